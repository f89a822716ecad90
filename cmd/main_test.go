package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "add", "list", "article", "video", "publish"}, names)

	video, _, err := root.Find([]string{"video"})
	require.NoError(t, err)
	assert.NotNil(t, video.Flags().Lookup("orientation"))
	assert.Error(t, video.Args(video, nil), "video needs at least one id")
}
