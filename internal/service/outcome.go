package service

// Kind classifies a failed outcome.
type Kind string

// Outcome kinds.
const (
	KindNone          Kind = ""
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindQuotaExceeded Kind = "quota_exceeded"
	KindGeneration    Kind = "generation"
	KindInternal      Kind = "internal"
)

// Outcome is the result of every handler. Handlers never return errors.
type Outcome struct {
	Success              bool   `json:"success"`
	Message              string `json:"message"`
	RequiresConfirmation bool   `json:"requiresConfirmation,omitempty"`
	Kind                 Kind   `json:"kind,omitempty"`
}

func ok(message string) Outcome {
	return Outcome{Success: true, Message: message}
}

func fail(kind Kind, message string) Outcome {
	return Outcome{Success: false, Message: message, Kind: kind}
}

// ItemOutcome reports one iteration of a bulk run.
type ItemOutcome struct {
	Category string `json:"category"`
	// Index is 1-based, matching the "concept N" prompt.
	Index   int    `json:"index"`
	Prompt  string `json:"prompt"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkReport aggregates a bulk run. Outcome.Success is true whenever the
// run itself was valid, even if some items failed.
type BulkReport struct {
	Outcome
	Items     []ItemOutcome `json:"items"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// CreateCategoryRequest asks for a new empty deck.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// DeleteCategoryRequest removes a deck. Non-empty decks need Confirmed.
type DeleteCategoryRequest struct {
	Category  string `json:"category"  validate:"required"`
	Confirmed bool   `json:"confirmed"`
}

// GenerateCardRequest appends one generated card.
type GenerateCardRequest struct {
	Category string `json:"category" validate:"required"`
	Details  string `json:"details"`
}

// UpdateCardRequest regenerates the image of an existing card.
type UpdateCardRequest struct {
	Category  string `json:"category"  validate:"required"`
	Details   string `json:"details"`
	CardIndex int    `json:"cardIndex" validate:"min=0"`
}

// DeleteCardRequest removes a card by position.
type DeleteCardRequest struct {
	Category string `json:"category" validate:"required"`
	Index    int    `json:"index"`
}

// BulkGenerateRequest generates Count cards for one category.
type BulkGenerateRequest struct {
	Category string `json:"category" validate:"required"`
	Count    int    `json:"count"    validate:"min=1,max=50"`
}

// BulkGenerateAllRequest generates Count cards for every category.
type BulkGenerateAllRequest struct {
	Count int `json:"count" validate:"min=1,max=50"`
}

// ThemedGenerateRequest appends one card styled by a theme.
type ThemedGenerateRequest struct {
	Category string `json:"category" validate:"required"`
	Theme    string `json:"theme"    validate:"required"`
}

// GenerateDraftRequest generates an image into the draft buffer.
type GenerateDraftRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// SaveDraftRequest appends the draft image to a deck.
type SaveDraftRequest struct {
	Category    string `json:"category"    validate:"required"`
	Description string `json:"description"`
}
