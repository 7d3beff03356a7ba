package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPerKind(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NoFileProvided().Status)
	assert.Equal(t, http.StatusBadRequest, FileTooLarge(2*1024*1024).Status)
	assert.Equal(t, "File too large. Max 2MB allowed.", FileTooLarge(2*1024*1024).Message)
	assert.Equal(t, http.StatusBadRequest, ExtractionFailed("m", nil).Status)
	assert.Equal(t, http.StatusBadRequest, MissingAnalysisContext().Status)
	assert.Equal(t, http.StatusInternalServerError, AnalysisUnavailable(nil).Status)
	assert.Equal(t, KindAnalysisUnavailable, ChatUnavailable(nil).Kind)
}

func TestWrappedErrorsAreFound(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := fmt.Errorf("process: %w", AnalysisUnavailable(cause))

	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindAnalysisUnavailable, e.Kind)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindAnalysisUnavailable))
	assert.False(t, IsKind(errors.New("plain"), KindAnalysisUnavailable))
}
