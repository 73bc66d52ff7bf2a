// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/embedded/internal/domain/model"
	"github.com/guttosm/embedded/internal/session"
)

type MockManager struct {
	mock.Mock
}

func (m *MockManager) Start(ctx context.Context, preset model.Preset, opts session.StartOptions) (model.ContainerInfo, error) {
	args := m.Called(ctx, preset, opts)
	if args.Get(0) == nil {
		return model.ContainerInfo{}, args.Error(1)
	}
	return args.Get(0).(model.ContainerInfo), args.Error(1)
}

func (m *MockManager) Get(id string) (model.ContainerInfo, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return model.ContainerInfo{}, args.Error(1)
	}
	return args.Get(0).(model.ContainerInfo), args.Error(1)
}

func (m *MockManager) List() []model.ContainerInfo {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.ContainerInfo)
}

func (m *MockManager) Logs(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockManager) Terminate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockManager) TerminateAll(ctx context.Context) {
	m.Called(ctx)
}
