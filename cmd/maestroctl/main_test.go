package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 0, run([]string{"--help"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: maestroctl")
	assert.Empty(t, stdout.String())
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "nothing to do")
}

func TestRun_OpenFailure(t *testing.T) {
	var stdout, stderr bytes.Buffer

	missing := filepath.Join(t.TempDir(), "ttyACM9")
	assert.Equal(t, 1, run([]string{"--stop", "--driver", "bugst", missing}, &stdout, &stderr))
	assert.Empty(t, stdout.String())
}
