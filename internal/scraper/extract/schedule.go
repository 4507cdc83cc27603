package extract

import (
	"strings"

	"github.com/samber/lo"

	"github.com/zhadevv/anichin/internal/scraper/selector"
)

const scheduleClassPrefix = "sch_"

// IsWeekday reports whether day is a lower-case English weekday name.
func IsWeekday(day string) bool {
	return lo.Contains(Weekdays, day)
}

// ScheduleDay reads the section of one weekday. It reports false when the
// page has no section for day.
func (e *Extractor) ScheduleDay(doc selector.NodeSet, day string) (DaySchedule, bool) {
	p := e.def.Page(PageSchedule)
	section := p.Sub("day").SelectWith(doc, map[string]string{"day": day})
	if !section.Exists() {
		return DaySchedule{List: []ScheduleItem{}}, false
	}
	return DaySchedule{List: e.scheduleItems(section)}, true
}

// Schedule reads every weekday section. Days without a section have an empty list.
func (e *Extractor) Schedule(doc selector.NodeSet) map[string]DaySchedule {
	out := make(map[string]DaySchedule, len(Weekdays))
	for _, day := range Weekdays {
		out[day] = DaySchedule{List: []ScheduleItem{}}
	}

	e.def.Page(PageSchedule).Sub("any_day").Each(doc, func(_ int, section selector.NodeSet) {
		day := scheduleDay(section.Attr("class"))
		ds, ok := out[day]
		if !ok {
			return
		}
		ds.List = append(ds.List, e.scheduleItems(section)...)
		out[day] = ds
	})
	return out
}

func (e *Extractor) scheduleItems(section selector.NodeSet) []ScheduleItem {
	item := e.def.Page(PageSchedule).Sub("item")
	out := []ScheduleItem{}
	item.Each(section, func(_ int, n selector.NodeSet) {
		title := item.Text(n, "title")
		if title == "" {
			return
		}
		href := item.Text(n, "href")
		countdown := item.Text(n, "countdown")
		release := item.Text(n, "release_time")
		out = append(out, ScheduleItem{
			Title:          title,
			Slug:           e.site.Slug(href),
			Thumbnail:      e.site.Absolute(item.Text(n, "thumbnail")),
			Countdown:      RawDisplay{Raw: countdown, Formatted: FormatCountdown(countdown)},
			ReleaseTime:    RawDisplay{Raw: release, Formatted: e.site.FormatReleaseTime(release)},
			CurrentEpisode: item.Text(n, "current_episode"),
			URL:            e.site.Absolute(href),
		})
	})
	return out
}

// scheduleDay returns the weekday named by the first sch_ class.
func scheduleDay(class string) string {
	for _, name := range strings.Fields(class) {
		if day, ok := strings.CutPrefix(name, scheduleClassPrefix); ok {
			return day
		}
	}
	return ""
}
