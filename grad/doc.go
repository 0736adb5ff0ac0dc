// Package grad abstracts the differentiation machinery the conditioning
// methods lean on: gradients of scalar losses over latent states, and
// vector-Jacobian products (VJPs) through opaque vector functions such as
// "forward operator ∘ denoiser".
//
// 🚀 Why an interface?
//
//	The denoiser and the measurement operator are external collaborators —
//	this library never sees their internals, only callables. Engine models
//	reverse-mode differentiation as a capability so any backend (automatic
//	or numerical) can be plugged in. The bundled FD backend rides on
//	gonum.org/v1/gonum/diff/fd.
//
// Key contract, Linearize:
//
//	y, vjp, err := engine.Linearize(f, x)
//
// evaluates f once at x and returns both the value and a pullback closure in
// a single combined pass; vjp(seed) then computes seedᵀ·J(f)(x) without
// re-linearizing. Pseudo-inverse-guided conditioning depends on this shape.
//
// Determinism: FD is a pure function of (f, x, step); no hidden randomness.
package grad
