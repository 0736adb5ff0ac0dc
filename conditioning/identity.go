package conditioning

// vanilla passes the input through without conditioning.
//
// Required: XT. Returns the state unchanged with norm 0.
type vanilla struct{ base }

// Kind reports Vanilla.
func (vanilla) Kind() Kind { return Vanilla }

// Conditioning returns (x_t, 0) exactly.
func (m vanilla) Conditioning(req Request) (Result, error) {
	if req.XT == nil {
		return Result{}, missing("x_t")
	}

	return Result{State: cloneSlice(req.XT), Norm: 0}, nil
}
