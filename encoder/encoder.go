package encoder

import (
	"encoding/json"
	"regexp"

	"github.com/anyproto/anytype-push-messaging/domain"
)

var topicPattern = regexp.MustCompile(`^[a-zA-Z0-9\-_.~%]+$`)

var targetFields = []string{"token", "topic", "condition"}

// Encode validates the message and returns its wire representation, ready to be marshaled as the
// "message" field of a send request. Absent fields are omitted from the result.
func Encode(message *domain.Message) (map[string]any, error) {
	if message == nil {
		return nil, domain.NewInvalidArgument("Message", "must be a non-nil message.")
	}
	result := map[string]any{}
	var err error
	if result["android"], err = encodeAndroidConfig(message.Android); err != nil {
		return nil, err
	}
	if result["condition"], err = CheckString("Message.condition", optional(message.Condition), true); err != nil {
		return nil, err
	}
	if result["data"], err = CheckStringMap("Message.data", message.Data); err != nil {
		return nil, err
	}
	if result["notification"], err = encodeNotification(message.Notification); err != nil {
		return nil, err
	}
	if result["token"], err = CheckString("Message.token", optional(message.Token), true); err != nil {
		return nil, err
	}
	if result["topic"], err = CheckString("Message.topic", optional(message.Topic), true); err != nil {
		return nil, err
	}
	if result["webpush"], err = opaque("Message.webpush", message.Webpush); err != nil {
		return nil, err
	}
	if result["apns"], err = opaque("Message.apns", message.APNS); err != nil {
		return nil, err
	}
	result = removeNullValues(result)

	var targets int
	for _, field := range targetFields {
		if _, ok := result[field]; ok {
			targets++
		}
	}
	if targets != 1 {
		return nil, domain.NewInvalidArgument("Message", "must specify exactly one of token, topic or condition.")
	}
	if topic, ok := result["topic"].(string); ok {
		if domain.Topic(topic).HasPrefix() {
			return nil, domain.NewInvalidArgument("Message.topic", "must not contain the "+domain.TopicPrefix+" prefix.")
		}
		if !topicPattern.MatchString(topic) {
			return nil, domain.NewInvalidArgument("Message.topic", "contains illegal characters.")
		}
	}
	return result, nil
}

func encodeNotification(notification *domain.Notification) (any, error) {
	if notification == nil {
		return nil, nil
	}
	result := map[string]any{}
	var err error
	if result["body"], err = CheckString("Notification.body", optional(notification.Body), false); err != nil {
		return nil, err
	}
	if result["title"], err = CheckString("Notification.title", optional(notification.Title), false); err != nil {
		return nil, err
	}
	return removeNullValues(result), nil
}

// removeNullValues drops nil values and empty objects.
func removeNullValues(object map[string]any) map[string]any {
	for k, v := range object {
		switch tv := v.(type) {
		case nil:
			delete(object, k)
		case map[string]any:
			if len(tv) == 0 {
				delete(object, k)
			}
		case map[string]string:
			if len(tv) == 0 {
				delete(object, k)
			}
		}
	}
	return object
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// opaque passes the object through its json form, so values that can't be sent fail here.
func opaque(label string, object map[string]any) (any, error) {
	if len(object) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(object)
	if err != nil {
		return nil, domain.NewInvalidArgument(label, "must be a JSON-serializable object.")
	}
	var result map[string]any
	if err = json.Unmarshal(data, &result); err != nil {
		return nil, domain.NewInvalidArgument(label, "must be a JSON-serializable object.")
	}
	return result, nil
}
