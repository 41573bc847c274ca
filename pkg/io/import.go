package io

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"os"

	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/token"
)

// ReadBundle decodes a project bundle from r.
//
// Every container needs an id and a name, and ids must be unique. A
// container's token, when present, must carry the container's id or no id
// at all; a missing token id is filled in.
//
// ReadBundle does not close r.
func ReadBundle(r io.Reader) (*token.Bundle, error) {
	var b token.Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode bundle")
	}
	seen := make(map[string]bool, len(b.Containers))
	for i := range b.Containers {
		c := &b.Containers[i]
		if c.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "container %d: missing id", i)
		}
		if seen[c.ID] {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "container %s: duplicate id", c.ID)
		}
		seen[c.ID] = true
		if c.Token == nil {
			continue
		}
		switch c.Token.ContainerID {
		case "":
			c.Token.ContainerID = c.ID
		case c.ID:
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "container %s: token belongs to %s", c.ID, c.Token.ContainerID)
		}
	}
	return &b, nil
}

// ImportBundle reads a bundle file at path.
func ImportBundle(path string) (*token.Bundle, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := ReadBundle(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	return b, nil
}

// ReadCanvasToken decodes a single canvas token from r.
func ReadCanvasToken(r io.Reader) (*token.CanvasToken, error) {
	var tok token.CanvasToken
	if err := json.NewDecoder(r).Decode(&tok); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode canvas token")
	}
	if tok.Items == nil {
		tok.Items = []token.Item{}
	}
	return &tok, nil
}

// ImportCanvasToken reads a canvas token file at path.
func ImportCanvasToken(path string) (*token.CanvasToken, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCanvasToken(f)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	return f, nil
}
