package doctor

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// NewMockCheck creates a new instance of MockCheck. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockCheck(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCheck {
	m := &MockCheck{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// MockCheck is a mock implementation of Check.
type MockCheck struct {
	mock.Mock
}

type MockCheck_Expecter struct {
	mock *mock.Mock
}

func (_m *MockCheck) EXPECT() *MockCheck_Expecter {
	return &MockCheck_Expecter{mock: &_m.Mock}
}

// Name provides a mock function for the type MockCheck
func (_mock *MockCheck) Name() string {
	ret := _mock.Called()
	if len(ret) == 0 {
		panic("no return value specified for Name")
	}
	return ret.String(0)
}

// Category provides a mock function for the type MockCheck
func (_mock *MockCheck) Category() string {
	ret := _mock.Called()
	if len(ret) == 0 {
		panic("no return value specified for Category")
	}
	return ret.String(0)
}

// Run provides a mock function for the type MockCheck
func (_mock *MockCheck) Run(ctx context.Context) *CheckResult {
	ret := _mock.Called(ctx)
	if len(ret) == 0 {
		panic("no return value specified for Run")
	}
	r0, _ := ret.Get(0).(*CheckResult)
	return r0
}

type MockCheck_Name_Call struct {
	*mock.Call
}

func (_e *MockCheck_Expecter) Name() *MockCheck_Name_Call {
	return &MockCheck_Name_Call{Call: _e.mock.On("Name")}
}

func (_c *MockCheck_Name_Call) Return(s string) *MockCheck_Name_Call {
	_c.Call.Return(s)
	return _c
}

type MockCheck_Category_Call struct {
	*mock.Call
}

func (_e *MockCheck_Expecter) Category() *MockCheck_Category_Call {
	return &MockCheck_Category_Call{Call: _e.mock.On("Category")}
}

func (_c *MockCheck_Category_Call) Return(s string) *MockCheck_Category_Call {
	_c.Call.Return(s)
	return _c
}

type MockCheck_Run_Call struct {
	*mock.Call
}

func (_e *MockCheck_Expecter) Run(ctx any) *MockCheck_Run_Call {
	return &MockCheck_Run_Call{Call: _e.mock.On("Run", ctx)}
}

func (_c *MockCheck_Run_Call) Return(r *CheckResult) *MockCheck_Run_Call {
	_c.Call.Return(r)
	return _c
}
