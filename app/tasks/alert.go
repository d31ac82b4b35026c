package tasks

import (
	"errors"
	"fmt"

	"github.com/lysyi3m/calendar-comb/app/calendar"
	"github.com/lysyi3m/calendar-comb/app/metrics"
	"github.com/lysyi3m/calendar-comb/app/source"
)

// alertText describes a batch-level failure in the channel's language.
func alertText(err error) string {
	var parseErr *source.ParseError
	var fetchErr *source.FetchError

	switch {
	case errors.As(err, &parseErr) && errors.Is(err, source.ErrNotList):
		return fmt.Sprintf("❌ 想定外の形式: %s", parseErr.Body)
	case errors.As(err, &parseErr) && parseErr.Format == calendar.FormatRSS:
		return fmt.Sprintf("❌ RSS パースエラー: %v", parseErr.Err)
	case errors.As(err, &parseErr):
		return fmt.Sprintf("❌ JSON パースエラー: %v", parseErr.Err)
	case errors.As(err, &fetchErr):
		last := fetchErr.Last()
		if last.StatusCode != 0 {
			return fmt.Sprintf("❌ %s 取得失敗 %d: %s", last.Source, last.StatusCode, last.Body)
		}
		return fmt.Sprintf("❌ %s 取得失敗: %v", last.Source, last.Err)
	default:
		return fmt.Sprintf("❌ 取得失敗: %v", err)
	}
}

func outcomeOf(err error) string {
	var parseErr *source.ParseError
	if errors.As(err, &parseErr) {
		return metrics.OutcomeParseError
	}
	return metrics.OutcomeFetchError
}
