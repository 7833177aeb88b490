package messaging

import (
	"fmt"
	"slices"

	"github.com/anyproto/anytype-push-messaging/domain"
)

// ErrorInfo describes a failed item of a batch request.
type ErrorInfo struct {
	// Index is the zero-based position of the item in the request.
	Index  int
	Reason string
}

// TopicManagementResponse is the outcome of a subscribe or unsubscribe call.
type TopicManagementResponse struct {
	successCount int
	failureCount int
	errors       []ErrorInfo
}

func newTopicManagementResponse(resp any) (*TopicManagementResponse, error) {
	obj, ok := resp.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: topic management response must be an object: %v", domain.ErrUnexpectedResponse, resp)
	}
	results, ok := obj["results"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: topic management response has no results: %v", domain.ErrUnexpectedResponse, resp)
	}
	r := &TopicManagementResponse{}
	for i, result := range results {
		item, ok := result.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: topic management result %d is not an object: %v", domain.ErrUnexpectedResponse, i, result)
		}
		reason, failed := item["error"]
		if !failed {
			r.successCount++
			continue
		}
		r.failureCount++
		r.errors = append(r.errors, ErrorInfo{Index: i, Reason: reasonString(reason)})
	}
	return r, nil
}

func reasonString(reason any) string {
	if s, ok := reason.(string); ok {
		return s
	}
	return fmt.Sprint(reason)
}

func (r *TopicManagementResponse) SuccessCount() int {
	return r.successCount
}

func (r *TopicManagementResponse) FailureCount() int {
	return r.failureCount
}

func (r *TopicManagementResponse) Errors() []ErrorInfo {
	return slices.Clone(r.errors)
}
