package emoji

import "sync/atomic"

// emojiMap holds emoji and fallback mappings
var emojiMap = map[string][2]string{
	// [emoji, fallback]
	"error":     {"❌", "[ERR]"},
	"warning":   {"⚠️", "[WRN]"},
	"info":      {"ℹ️", "[INF]"},
	"success":   {"✅", "[OK]"},
	"launcher":  {"📱", "[ENV]"},
	"diagnosis": {"🩺", "[DX]"},
	"problem":   {"🔴", "[!]"},
	"rule":      {"📐", "[RULE]"},
	"keyword":   {"🏷️", "[TAG]"},
	"file":      {"📄", "[FILE]"},
	"watch":     {"👀", "[WATCH]"},
	"server":    {"🚀", "[HTTP]"},
	"brain":     {"🧠", "[AI]"},
}

var emojiDisabled atomic.Bool

// SetEmojiDisabled sets the global emoji disabled state
func SetEmojiDisabled(disabled bool) {
	emojiDisabled.Store(disabled)
}

// IsEmojiDisabled returns the current emoji disabled state
func IsEmojiDisabled() bool {
	return emojiDisabled.Load()
}

// GetEmoji returns emoji or fallback based on the global setting
func GetEmoji(key string) string {
	return Lookup(key, emojiDisabled.Load())
}

// Lookup returns the emoji for key, or its text fallback when disabled
func Lookup(key string, disabled bool) string {
	mapping, exists := emojiMap[key]
	if !exists {
		return "[?]"
	}
	if disabled {
		return mapping[1]
	}
	return mapping[0]
}
