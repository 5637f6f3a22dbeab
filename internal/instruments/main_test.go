package instruments

import (
	"os"
	"testing"

	"github.com/goffycoder/VOCI-TRADE/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
