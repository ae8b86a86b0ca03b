package compiler

import (
	"github.com/stretchr/testify/mock"

	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/cfn"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/naming"
)

// HostMock is a mock implementation of the resource and function models.
// Naming follows the serverless conventions of the embedded provider.
type HostMock struct {
	mock.Mock
	naming.Provider
}

func (m *HostMock) TableNames() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *HostMock) FunctionNames() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *HostMock) Function(name string) (Function, error) {
	args := m.Called(name)
	return args.Get(0).(Function), args.Error(1)
}

// DocumentMock is a mock implementation of the Document interface.
type DocumentMock struct {
	mock.Mock
}

func (m *DocumentMock) Merge(res *cfn.Resources) error {
	args := m.Called(res)
	return args.Error(0)
}
