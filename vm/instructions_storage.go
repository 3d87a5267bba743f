package vm

func opSload(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	k := s.Peek(0)
	v := ctx.World.SLoad(ctx.Input.Address, k)
	ctx.Substate.AccessStorageKey(ctx.Input.Address, k)
	k.Set(v)
	return nil, nil
}

func opSstore(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	k, v := s.Pop(), s.Pop()
	ctx.World.SStore(ctx.Input.Address, k, v)
	ctx.Substate.AccessStorageKey(ctx.Input.Address, k)
	return nil, nil
}
