package textlist

import "strings"

// Delimiter описывает, как массив хранится в однострочном (или многострочном) поле формы.
type Delimiter struct {
	Sep  string
	Glue string
}

var (
	// Comma используется для технологий и ключевых предметов: "React, TypeScript".
	Comma = Delimiter{Sep: ",", Glue: ", "}
	// Pipe используется для клубов в образовании: "Robotics | Chess Club".
	Pipe = Delimiter{Sep: "|", Glue: " | "}
	// Newline используется для списка должностей профиля и ключевых возможностей проекта.
	Newline = Delimiter{Sep: "\n", Glue: "\n"}
)

// Split разбивает текст по разделителю, обрезает пробелы и отбрасывает пустые элементы.
// Всегда возвращает не-nil срез.
func Split(text string, d Delimiter) []string {
	parts := strings.Split(text, d.Sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Join собирает массив обратно в текст для поля ввода.
func Join(items []string, d Delimiter) string {
	return strings.Join(items, d.Glue)
}

// Normalize приводит текст к каноничному виду: Join(Split(text)).
func Normalize(text string, d Delimiter) string {
	return Join(Split(text, d), d)
}

// Clean обрезает пробелы у элементов и убирает пустые, не трогая исходный срез.
func Clean(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
