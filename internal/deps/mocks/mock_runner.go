package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// NewMockRunner creates a new instance of MockRunner. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockRunner(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRunner {
	m := &MockRunner{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// MockRunner is a mock implementation of deps.Runner.
type MockRunner struct {
	mock.Mock
}

type MockRunner_Expecter struct {
	mock *mock.Mock
}

func (_m *MockRunner) EXPECT() *MockRunner_Expecter {
	return &MockRunner_Expecter{mock: &_m.Mock}
}

// Run provides a mock function for the type MockRunner
func (_mock *MockRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	callArgs := []any{ctx, dir, name}
	for _, a := range args {
		callArgs = append(callArgs, a)
	}
	ret := _mock.Called(callArgs...)

	if len(ret) == 0 {
		panic("no return value specified for Run")
	}

	var r0 error
	if returnFunc, ok := ret.Get(0).(func(context.Context, string, string, ...string) error); ok {
		r0 = returnFunc(ctx, dir, name, args...)
	} else {
		r0 = ret.Error(0)
	}
	return r0
}

// MockRunner_Run_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Run'
type MockRunner_Run_Call struct {
	*mock.Call
}

// Run is a helper method to define mock.On call
//   - ctx context.Context
//   - dir string
//   - name string
//   - args ...string
func (_e *MockRunner_Expecter) Run(ctx any, dir any, name any, args ...any) *MockRunner_Run_Call {
	return &MockRunner_Run_Call{Call: _e.mock.On("Run",
		append([]any{ctx, dir, name}, args...)...)}
}

func (_c *MockRunner_Run_Call) Return(err error) *MockRunner_Run_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MockRunner_Run_Call) RunAndReturn(run func(context.Context, string, string, ...string) error) *MockRunner_Run_Call {
	_c.Call.Return(run)
	return _c
}
