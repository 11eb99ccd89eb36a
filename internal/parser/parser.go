// Package parser assembles the lexer's token stream (after expansion)
// into a Pipeline: an ordered sequence of Commands with optional
// redirections and a background flag.
package parser

import (
	"strings"

	"github.com/ant0ine/gosh/internal/expand"
	"github.com/ant0ine/gosh/internal/token"
)

// Command is one external command: its name followed by its arguments.
type Command []string

// Pipeline is the structured result of parsing one input line. When Err
// is non-empty, Stages may be partial and the pipeline must not be
// executed.
type Pipeline struct {
	Stages     []Command
	InFile     string
	HasInFile  bool
	OutFile    string
	HasOutFile bool
	OutAppend  bool
	Background bool
	Err        string
}

// Parse lexes, expands, and parses a raw input line into a Pipeline.
func Parse(line string) Pipeline {
	tokens := token.Lex(line)
	tokens = expandWords(tokens)
	return build(tokens)
}

// expandWords applies tilde and glob expansion to every Word token,
// replacing a single Word token with as many as its glob expands to.
func expandWords(tokens []token.Token) []token.Token {
	var out []token.Token
	for _, t := range tokens {
		if t.Kind != token.Word {
			out = append(out, t)
			continue
		}
		for _, w := range expand.Word(t.Value) {
			out = append(out, token.Token{Kind: token.Word, Value: w})
		}
	}
	return out
}

// build scans the (already expanded) token stream left-to-right.
func build(tokens []token.Token) Pipeline {
	var p Pipeline
	var current Command

	i := 0
	for i < len(tokens) {
		t := tokens[i]

		switch t.Kind {
		case token.Word:
			current = append(current, t.Value)
			i++

		case token.Pipe:
			if len(current) == 0 {
				p.Err = "misplaced pipe"
				return p
			}
			p.Stages = append(p.Stages, current)
			current = nil
			i++

		case token.RedirIn:
			if p.HasInFile {
				p.Err = "only one input file supported"
				return p
			}
			i++
			if i >= len(tokens) || tokens[i].Kind != token.Word {
				p.Err = "filename missing for input redirection"
				return p
			}
			p.InFile = tokens[i].Value
			p.HasInFile = true
			i++

		case token.RedirOut, token.RedirAppend:
			if p.HasOutFile {
				p.Err = "only one output file supported"
				return p
			}
			p.OutAppend = t.Kind == token.RedirAppend
			i++
			if i >= len(tokens) || tokens[i].Kind != token.Word {
				p.Err = "filename missing for output redirection"
				return p
			}
			p.OutFile = tokens[i].Value
			p.HasOutFile = true
			i++

		case token.Amp:
			// '&' does not terminate parsing: trailing words are still
			// appended to the current stage.
			p.Background = true
			i++
		}
	}

	if len(current) != 0 {
		p.Stages = append(p.Stages, current)
	} else if len(p.Stages) != 0 {
		p.Err = "misplaced pipe"
	}

	return p
}

// CommandText reconstructs a human-readable form of the pipeline, used
// for job-table listings ("jobs", "fg"/"bg" announcements).
func CommandText(p Pipeline) string {
	var sections []string
	for _, stage := range p.Stages {
		sections = append(sections, strings.Join(stage, " "))
	}
	text := strings.Join(sections, " | ")
	if p.HasInFile {
		text += " < " + p.InFile
	}
	if p.HasOutFile {
		if p.OutAppend {
			text += " >> " + p.OutFile
		} else {
			text += " > " + p.OutFile
		}
	}
	if p.Background {
		text += " &"
	}
	return text
}
