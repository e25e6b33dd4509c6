package bcache

import "time"

type fakeExecutor struct {
	calls  [][]string
	output string
	err    error
}

func (f *fakeExecutor) record(command string, arg ...string) {
	f.calls = append(f.calls, append([]string{command}, arg...))
}

func (f *fakeExecutor) ExecuteCommandWithOutput(command string, arg ...string) (string, error) {
	f.record(command, arg...)
	return f.output, f.err
}

func (f *fakeExecutor) ExecuteCommandWithTimeout(timeout time.Duration, command string, arg ...string) (string, error) {
	f.record(command, arg...)
	return f.output, f.err
}
