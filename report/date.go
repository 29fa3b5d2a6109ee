package report

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

const emDash = "—"

// dateLocales maps language or language_REGION to monday locale.
var dateLocales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_US": monday.LocaleEnUS,
	"en_GB": monday.LocaleEnGB,
	"de":    monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_CA": monday.LocaleFrCA,
	"es":    monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"pt":    monday.LocalePtPT,
	"pt_BR": monday.LocalePtBR,
	"nl":    monday.LocaleNlNL,
	"nl_BE": monday.LocaleNlBE,
	"pl":    monday.LocalePlPL,
	"cs":    monday.LocaleCsCZ,
	"da":    monday.LocaleDaDK,
	"fi":    monday.LocaleFiFI,
	"sv":    monday.LocaleSvSE,
	"nb":    monday.LocaleNbNO,
	"ro":    monday.LocaleRoRO,
	"hu":    monday.LocaleHuHU,
	"bg":    monday.LocaleBgBG,
	"el":    monday.LocaleElGR,
	"uk":    monday.LocaleUkUA,
	"ru":    monday.LocaleRuRU,
}

func dateLocale(tag language.Tag) monday.Locale {
	base, _ := tag.Base()
	region, _ := tag.Region()
	if loc, ok := dateLocales[base.String()+"_"+region.String()]; ok {
		return loc
	}
	if loc, ok := dateLocales[base.String()]; ok {
		return loc
	}
	return monday.LocaleEnUS
}

// formatDate prints value recognized as date with layout in document
// language. Unrecognized values are returned verbatim, empty ones as em dash.
func formatDate(value, layout string, tag language.Tag) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return emDash
	}
	region, _ := tag.Region()
	t, err := dateparse.ParseIn(value, time.UTC, dateparse.PreferMonthFirst(region.String() == "US"))
	if err != nil {
		return value
	}
	return monday.Format(t, layout, dateLocale(tag))
}
