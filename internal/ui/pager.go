package ui

import (
	"strings"

	"github.com/noborus/ov/oviewer"
)

// ShowInPager displays content in the ov pager and blocks until it exits
func ShowInPager(content string) error {
	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// Leave the screen clean on exit; the results are printed there otherwise
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
