package activitylog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCleanupJob_Process(t *testing.T) {
	mockRepo := new(MockRepository)
	job := NewCleanupJob(NewService(mockRepo), 10)

	mockRepo.On("CleanupOldActivity", mock.Anything, 10).Return(int64(100), nil)

	err := job.Process(context.Background())
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCleanupJob_ProcessError(t *testing.T) {
	mockRepo := new(MockRepository)
	job := NewCleanupJob(NewService(mockRepo), 30)

	mockRepo.On("CleanupOldActivity", mock.Anything, 30).Return(int64(0), errors.New("timeout"))

	err := job.Process(context.Background())
	assert.EqualError(t, err, "timeout")
}
