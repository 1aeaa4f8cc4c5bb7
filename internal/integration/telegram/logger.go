package telegram

import (
	"fmt"

	"github.com/rs/zerolog"
)

// botLogger routes tgbotapi library logs through zerolog.
type botLogger struct {
	log zerolog.Logger
}

func (b *botLogger) Println(v ...any) {
	b.log.Warn().Str("component", "tgbotapi").Msg(fmt.Sprint(v...))
}

func (b *botLogger) Printf(format string, v ...any) {
	b.log.Warn().Str("component", "tgbotapi").Msgf(format, v...)
}
