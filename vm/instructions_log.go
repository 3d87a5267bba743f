package vm

import "github.com/evmspec/evmcore/word"

// opLog implements LOG0..LOG4: pops offset, size, then N topics (N =
// ctx.currentOp.LogTopics()), and appends a Log record to the shared
// substate. Logging is a pure write-side-effect opcode that requires write
// permission, enforced centrally by the interpreter loop via
// OpCode.RequiresWrite.
func opLog(ctx *Context) ([]byte, error) {
	s := ctx.Machine.Stack
	offset, size := s.Pop(), s.Pop()
	n := ctx.currentOp.LogTopics()
	topics := make([]word.Word, n)
	for i := 0; i < n; i++ {
		topics[i] = *s.Pop()
	}
	data := ctx.Machine.Memory.Read(offset.Uint64(), size.Uint64())
	ctx.Substate.AppendLog(Log{
		Address: ctx.Input.Address,
		Data:    data,
		Topics:  topics,
	})
	return nil, nil
}
