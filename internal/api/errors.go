package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Error is a tagged backend error. Message carries the structured message
// field from the response body when the backend supplied one; callers use
// it as the first tier of user-facing message resolution.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// errorBody is the backend's error envelope. Both spellings are seen in
// the wild; message wins when both are present.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func errorFromResponse(resp *http.Response) *Error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var body errorBody
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			apiErr.Message = body.Message
		} else if body.Error != "" {
			apiErr.Message = body.Error
		}
	}
	return apiErr
}
