package render

import "strings"

// SubtitleWordsPerLine is how many words a subtitle line holds.
const SubtitleWordsPerLine = 3

// WrapWords splits text into lines of at most n words. Runs of whitespace
// collapse to single spaces. n <= 0 keeps everything on one line.
func WrapWords(text string, n int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if n <= 0 {
		return []string{strings.Join(words, " ")}
	}

	lines := make([]string, 0, (len(words)+n-1)/n)
	for start := 0; start < len(words); start += n {
		end := min(start+n, len(words))
		lines = append(lines, strings.Join(words[start:end], " "))
	}
	return lines
}
