package encoder

import (
	"regexp"

	"github.com/anyproto/anytype-push-messaging/domain"
)

var (
	ttlPattern   = regexp.MustCompile(`^\d+(\.\d+)?s$`)
	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

func encodeAndroidConfig(android *domain.AndroidConfig) (any, error) {
	if android == nil {
		return nil, nil
	}
	result := map[string]any{}
	var err error
	if result["collapse_key"], err = CheckString("AndroidConfig.collapse_key", optional(android.CollapseKey), false); err != nil {
		return nil, err
	}
	if result["data"], err = CheckStringMap("AndroidConfig.data", android.Data); err != nil {
		return nil, err
	}
	if result["notification"], err = encodeAndroidNotification(android.Notification); err != nil {
		return nil, err
	}
	if result["priority"], err = CheckString("AndroidConfig.priority", optional(android.Priority), true); err != nil {
		return nil, err
	}
	if result["restricted_package_name"], err = CheckString("AndroidConfig.restricted_package_name", optional(android.RestrictedPackageName), false); err != nil {
		return nil, err
	}
	if result["ttl"], err = CheckString("AndroidConfig.ttl", optional(android.TTL), true); err != nil {
		return nil, err
	}
	result = removeNullValues(result)

	if priority, ok := result["priority"].(string); ok {
		if priority != domain.AndroidPriorityHigh && priority != domain.AndroidPriorityNormal {
			return nil, domain.NewInvalidArgument("AndroidConfig.priority", `must be "high" or "normal".`)
		}
	}
	if ttl, ok := result["ttl"].(string); ok && !ttlPattern.MatchString(ttl) {
		return nil, domain.NewInvalidArgument("AndroidConfig.ttl", `must contain a non-negative numeric value followed by the "s" suffix.`)
	}
	return result, nil
}

func encodeAndroidNotification(notification *domain.AndroidNotification) (any, error) {
	if notification == nil {
		return nil, nil
	}
	var (
		result = map[string]any{}
		err    error
	)
	fields := []struct {
		key, label string
		value      string
		nonEmpty   bool
	}{
		{"body", "AndroidNotification.body", notification.Body, false},
		{"body_loc_key", "AndroidNotification.body_loc_key", notification.BodyLocKey, false},
		{"click_action", "AndroidNotification.click_action", notification.ClickAction, false},
		{"color", "AndroidNotification.color", notification.Color, true},
		{"icon", "AndroidNotification.icon", notification.Icon, false},
		{"sound", "AndroidNotification.sound", notification.Sound, false},
		{"tag", "AndroidNotification.tag", notification.Tag, false},
		{"title", "AndroidNotification.title", notification.Title, false},
		{"title_loc_key", "AndroidNotification.title_loc_key", notification.TitleLocKey, false},
	}
	for _, f := range fields {
		if result[f.key], err = CheckString(f.label, optional(f.value), f.nonEmpty); err != nil {
			return nil, err
		}
	}
	if result["body_loc_args"], err = CheckStringList("AndroidNotification.body_loc_args", notification.BodyLocArgs); err != nil {
		return nil, err
	}
	if result["title_loc_args"], err = CheckStringList("AndroidNotification.title_loc_args", notification.TitleLocArgs); err != nil {
		return nil, err
	}
	result = removeNullValues(result)

	if color, ok := result["color"].(string); ok && !colorPattern.MatchString(color) {
		return nil, domain.NewInvalidArgument("AndroidNotification.color", "must be in the form #RRGGBB.")
	}
	if err = checkLocKey(result, "body_loc_args", "body_loc_key"); err != nil {
		return nil, err
	}
	if err = checkLocKey(result, "title_loc_args", "title_loc_key"); err != nil {
		return nil, err
	}
	return result, nil
}

// checkLocKey requires the localization key whenever its arguments are set.
func checkLocKey(result map[string]any, argsKey, locKey string) error {
	if _, ok := result[argsKey]; !ok {
		return nil
	}
	if _, ok := result[locKey]; !ok {
		return domain.NewInvalidArgument("AndroidNotification."+locKey, "is required when specifying "+argsKey+".")
	}
	return nil
}
