package domain

import (
	"strings"
)

const TopicPrefix = "/topics/"

// Topic is a topic name as given by a caller, with or without the /topics/ prefix.
type Topic string

func (t Topic) HasPrefix() bool {
	return strings.HasPrefix(string(t), TopicPrefix)
}

// Qualified returns the subscription target form. Already qualified names are returned unchanged.
func (t Topic) Qualified() string {
	if t.HasPrefix() {
		return string(t)
	}
	return TopicPrefix + string(t)
}

func (t Topic) Name() string {
	return strings.TrimPrefix(string(t), TopicPrefix)
}
