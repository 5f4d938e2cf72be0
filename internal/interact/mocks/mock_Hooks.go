// Package mocks provides test doubles for the interact hooks.
package mocks

import (
	model "github.com/sells-group/pricechart/internal/model"
	mock "github.com/stretchr/testify/mock"
)

// MockHooks is a mock type for the Hooks interface.
type MockHooks struct {
	mock.Mock
}

// OnAfterDraw provides a mock function with given fields: markers
func (_m *MockHooks) OnAfterDraw(markers []int) {
	_m.Called(markers)
}

// OnTooltipUpdate provides a mock function with given fields: point
func (_m *MockHooks) OnTooltipUpdate(point *model.PlotPoint) {
	_m.Called(point)
}

// NewMockHooks creates a new instance of MockHooks.
func NewMockHooks(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockHooks {
	m := &MockHooks{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
