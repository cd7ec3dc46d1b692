package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Event type discriminators produced by the AI stream. Unknown types are
// relayed to the client untouched.
const (
	EventInit          = "init"
	EventOcrStart      = "ocr_start"
	EventOcrComplete   = "ocr_complete"
	EventLlmStart      = "llm_start"
	EventProgress      = "progress"
	EventRecipeCreated = "recipe_created"
	EventComplete      = "complete"
	EventError         = "error"
)

var (
	MessageSuccessUploadRecipe = "recipe uploaded successfully"

	MessageFailedUploadRecipe = "failed to upload recipe"
	MessageNoFileUploaded     = "no file uploaded"
	MessageInvalidFileType    = "only PDF and image files are allowed"

	ErrNoFileUploaded   = errors.New("no file uploaded")
	ErrInvalidFileType  = errors.New("only PDF and image files are allowed")
	ErrInvalidAIMenus   = errors.New("AI did not return a valid menu array")
	ErrStreamIncomplete = errors.New("upstream stream ended unexpectedly")
)

// AIServerError reports a non-success status from the AI service. Its
// message is relayed to the client inside the terminal error frame.
type AIServerError struct {
	StatusCode int
}

func (e *AIServerError) Error() string {
	return fmt.Sprintf("AI server error: %d", e.StatusCode)
}

type (
	// StreamMenu is one extracted dish as it appears on the wire: the
	// ingredients field is a raw comma-separated string until the
	// persistence writer normalizes it.
	StreamMenu struct {
		Name        string `json:"name"`
		Ingredients string `json:"ingredients"`
	}

	// StreamEvent is the tagged union a parsed AI frame decodes into.
	// Raw holds the original JSON so pass-through events reach the
	// client byte-identical even when they carry fields we don't model.
	StreamEvent struct {
		Type       string       `json:"type"`
		Page       int          `json:"page"`
		Progress   float64      `json:"progress"`
		TotalPages int          `json:"total_pages"`
		Menus      []StreamMenu `json:"menus"`
		Message    string       `json:"message"`

		Raw json.RawMessage `json:"-"`
	}

	// Client-facing event shapes. These are the streaming contract of
	// the upload endpoint and must stay wire-compatible with the app.
	RecipeCreatedEvent struct {
		Type     string `json:"type"`
		RecipeID uint   `json:"recipeId"`
	}

	ProgressEvent struct {
		Type     string       `json:"type"`
		Page     int          `json:"page"`
		Progress float64      `json:"progress"`
		Menus    []StreamMenu `json:"menus"`
		RecipeID uint         `json:"recipeId"`
	}

	CompleteEvent struct {
		Type       string `json:"type"`
		RecipeID   uint   `json:"recipeId"`
		TotalMenus int    `json:"totalMenus"`
	}

	ErrorEvent struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}

	// UploadRecipeRequest carries the buffered multipart file through
	// both upload flows.
	UploadRecipeRequest struct {
		FileName    string
		ContentType string
		Data        []byte
		UserID      uint
	}

	// AIMenusResponse is the non-streaming AI endpoint's JSON body.
	AIMenusResponse struct {
		Menus []StreamMenu `json:"menus"`
	}
)
