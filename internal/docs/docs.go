package docs

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// aliases route command-flavored names to the topic that covers them, so
// `satchel docs reorder` lands on the ordering page.
var aliases = map[string]string{
	"start":   "getting-started",
	"init":    "getting-started",
	"filter":  "filters",
	"search":  "filters",
	"pages":   "filters",
	"reorder": "ordering",
	"spaces":  "ordering",
	"drag":    "ordering",
}

func topicFiles() map[string]string {
	paths, err := fs.Glob(contentFS, "content/*.md")
	if err != nil {
		return nil
	}
	index := make(map[string]string, len(paths))
	for _, path := range paths {
		name := strings.TrimSuffix(strings.TrimPrefix(path, "content/"), ".md")
		index[name] = path
	}
	return index
}

func Topics() []string {
	var topics []string
	for name := range topicFiles() {
		topics = append(topics, name)
	}
	sort.Strings(topics)
	return topics
}

func Get(topic string) (string, bool) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if t, ok := aliases[topic]; ok {
		topic = t
	}
	path, ok := topicFiles()[topic]
	if !ok {
		return "", false
	}
	b, err := contentFS.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(b), true
}
