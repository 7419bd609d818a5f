package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestRemoteError_Propagation(t *testing.T) {
	remote := &domain.RemoteError{Name: domain.MissingModel, Description: "object is not a view"}
	wrapped := fmt.Errorf("reading model: %w", remote)

	var re *domain.RemoteError
	assert.ErrorAs(t, wrapped, &re)
	assert.Equal(t, domain.MissingModel, re.Name)
	assert.True(t, domain.IsRemote(wrapped, domain.MissingModel))
	assert.False(t, domain.IsRemote(wrapped, domain.InvalidWidgetPath))
	assert.Equal(t, "MissingModel: object is not a view", remote.Error())
}

func TestInvalidArgumentError_Message(t *testing.T) {
	_, err := domain.MouseButton("midle").ClickAction()
	assert.Error(t, err)

	var ia *domain.InvalidArgumentError
	assert.ErrorAs(t, err, &ia)
	assert.Equal(t, "midle", ia.Value)
	assert.Equal(t, []string{"left", "right", "middle"}, ia.Allowed)
	assert.Contains(t, err.Error(), `"midle"`)
	assert.Contains(t, err.Error(), "left, right, middle")
}

func TestMouseButton_ClickAction(t *testing.T) {
	tests := []struct {
		button domain.MouseButton
		want   string
	}{
		{domain.MouseButton(""), "click"},
		{domain.ButtonLeft, "click"},
		{domain.ButtonRight, "rightclick"},
		{domain.ButtonMiddle, "middleclick"},
	}
	for _, tt := range tests {
		got, err := tt.button.ClickAction()
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNotFoundError_Message(t *testing.T) {
	t.Run("Carries Value And Location", func(t *testing.T) {
		err := &domain.NotFoundError{
			Entity:     "combobox text",
			Value:      "Green",
			Location:   "mainWindow::colors",
			Candidates: []string{"Red", "Blue"},
		}
		assert.Contains(t, err.Error(), `"Green"`)
		assert.Contains(t, err.Error(), "mainWindow::colors")
		assert.Contains(t, err.Error(), "Red, Blue")
	})

	t.Run("Suggests Closest Match", func(t *testing.T) {
		err := &domain.NotFoundError{
			Entity:     "tab",
			Value:      "Setings",
			Candidates: []string{"General", "Settings", "About"},
		}
		assert.Contains(t, err.Error(), `closest match: "Settings"`)
	})

	t.Run("No Suggestion When Nothing Is Close", func(t *testing.T) {
		err := &domain.NotFoundError{
			Entity:     "tab",
			Value:      "Bananas",
			Candidates: []string{"General", "About"},
		}
		assert.NotContains(t, err.Error(), "closest match")
	})

	t.Run("Unwraps Cause", func(t *testing.T) {
		cause := &domain.RemoteError{Name: domain.InvalidWidgetPath, Description: "no widget"}
		err := &domain.NotFoundError{Entity: "widget", Value: "mainWindow", Err: cause}
		assert.ErrorIs(t, err, cause)
	})
}

func TestErrClosed_Sentinel(t *testing.T) {
	err := fmt.Errorf("send click: %w", domain.ErrClosed)
	assert.True(t, errors.Is(err, domain.ErrClosed))
}
