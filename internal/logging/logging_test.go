package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	logrusTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestComponentFields(t *testing.T) {
	hook := logrusTest.NewLocal(Logger())
	defer hook.Reset()

	prevLevel := Logger().GetLevel()
	Logger().SetLevel(logrus.DebugLevel)
	defer Logger().SetLevel(prevLevel)

	Scanner.Info("scanning")
	Remote.Warn("upload failed")

	entries := hook.AllEntries()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "scanner", entries[0].Data["component"])
		assert.Equal(t, "remote", entries[1].Data["component"])
		assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	}
}
