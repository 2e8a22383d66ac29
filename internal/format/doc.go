// Package format renders tokenized program lines as canonical source text.
//
// Назначение: каноничные пробелы внутри строки и отступы по глубине вложенности.
// Не делает: проверку структуры блоков (это parser.Build) и IO.
// Зависимости: internal/token.
package format
