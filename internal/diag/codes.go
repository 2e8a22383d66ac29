package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadEscape          Code = 1003
	LexBadNumber          Code = 1004
	LexIntOverflow        Code = 1005
	LexTokenTooLong       Code = 1006

	// Парсерные
	SynInfo             Code = 2000
	SynUnexpectedToken  Code = 2001
	SynExpectIdentifier Code = 2002
	SynExpectExpression Code = 2003
	SynUnclosedParen    Code = 2004
	SynUnclosedBracket  Code = 2005
	SynBadAssignTarget  Code = 2006
	SynTrailingTokens   Code = 2007
	SynVariadicNotLast  Code = 2008
	SynDuplicateParam   Code = 2009
	SynForBadHeader     Code = 2010

	// Структура блоков
	StrInfo            Code = 3000
	StrUnmatchedEnd    Code = 3001
	StrMissingEnd      Code = 3002
	StrStrayClause     Code = 3003
	StrClauseAfterElse Code = 3004
	StrBreakOutside    Code = 3005
	StrReturnOutside   Code = 3006
	StrBadClassBody    Code = 3007
	StrBadModuleBody   Code = 3008

	// Ввод/вывод и проект
	IOLoadFileError      Code = 4001
	IOInsufficientSpace  Code = 4002
	IONameTooLong        Code = 4003
	IOBadImage           Code = 4004
	IOLineOutOfRange     Code = 4005
	ProjInfo             Code = 5000
	ProjMissingManifest  Code = 5001
	ProjInvalidManifest  Code = 5002
	ProjMissingMain      Code = 5003
	ObsTimings           Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	LexInfo:               "Lexical information",
	LexUnknownChar:        "Unknown character",
	LexUnterminatedString: "Unterminated string",
	LexBadEscape:          "Bad escape sequence",
	LexBadNumber:          "Bad number",
	LexIntOverflow:        "Integer literal out of range",
	LexTokenTooLong:       "Token too long",
	SynInfo:               "Syntax information",
	SynUnexpectedToken:    "Unexpected token",
	SynExpectIdentifier:   "Expected identifier",
	SynExpectExpression:   "Expected expression",
	SynUnclosedParen:      "Unclosed parenthesis",
	SynUnclosedBracket:    "Unclosed bracket",
	SynBadAssignTarget:    "Invalid assignment target",
	SynTrailingTokens:     "Unexpected tokens after statement",
	SynVariadicNotLast:    "Variadic marker must be last",
	SynDuplicateParam:     "Duplicate parameter",
	SynForBadHeader:       "Malformed for header",
	StrInfo:               "Structure information",
	StrUnmatchedEnd:       "Unmatched end",
	StrMissingEnd:         "Missing end",
	StrStrayClause:        "elif/else outside if",
	StrClauseAfterElse:    "Clause after else",
	StrBreakOutside:       "break outside loop",
	StrReturnOutside:      "return outside function",
	StrBadClassBody:       "Invalid statement in class body",
	StrBadModuleBody:      "Invalid statement in module body",
	IOLoadFileError:       "Failed to load file",
	IOInsufficientSpace:   "Insufficient program space",
	IONameTooLong:         "Name too long",
	IOBadImage:            "Malformed program image",
	IOLineOutOfRange:      "Line position out of range",
	ProjInfo:              "Project information",
	ProjMissingManifest:   "Missing lisle.toml",
	ProjInvalidManifest:   "Invalid lisle.toml",
	ProjMissingMain:       "Missing main file",
	ObsTimings:            "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("STR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// Kind maps a code range to its error kind.
func (c Code) Kind() Kind {
	switch {
	case c >= 1000 && c < 2000:
		return KindLex
	case c >= 2000 && c < 3000:
		return KindParse
	case c >= 3000 && c < 4000:
		return KindStructure
	case c == IOInsufficientSpace || c == IONameTooLong:
		return KindCapacity
	case c == IOLineOutOfRange:
		return KindIndex
	}
	return KindUnknown
}
