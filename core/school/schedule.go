package school

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/schooldash/core/listing"
	"github.com/trezcool/schooldash/core/user"
)

// ScheduleDay holds the lessons of one weekday, by start time.
type ScheduleDay struct {
	Day     string   `json:"day"`
	Lessons []Lesson `json:"lessons"`
}

// Schedule is a teacher's week of lessons, one entry per weekday, Monday first.
type Schedule struct {
	TeacherID string        `json:"teacherId"`
	Days      []ScheduleDay `json:"days"`
}

// Schedule fetches the week of lessons of a teacher.
// Teachers see their own schedule; admins pick the teacher with the teacherId parameter.
func (svc *Service) Schedule(ctx context.Context, params url.Values) (Schedule, error) {
	id, ok := user.IdentityFrom(ctx)
	if !ok {
		return Schedule{}, ErrForbidden
	}

	var teacherID string
	switch {
	case id.Role == user.RoleTeacher && id.PersonID != "":
		teacherID = id.PersonID
	case id.CanMutate():
		teacherID = params.Get("teacherId")
		if teacherID == "" {
			return Schedule{}, &listing.ParseError{Key: "teacherId", Kind: listing.AsString, Want: "a teacher id"}
		}
	default:
		return Schedule{}, ErrForbidden
	}

	ent, _ := Lookup(string(Lessons))
	filter, err := ent.Filters.Build(url.Values{"teacherId": {teacherID}})
	if err != nil {
		return Schedule{}, err
	}
	q := listing.Query{
		Filter:   filter,
		Ordering: ent.Sorts.Parse(url.Values{listing.OrderingParam: {"startTime"}}),
		Page:     listing.Page{Number: 1, Size: svc.exportLimit},
	}
	rows, _, err := svc.repo.Query(ctx, Lessons, q)
	if err != nil {
		return Schedule{}, errors.Wrap(err, "querying schedule")
	}

	sch := Schedule{TeacherID: teacherID, Days: make([]ScheduleDay, len(Weekdays))}
	byDay := make(map[string]int, len(Weekdays))
	for i, day := range Weekdays {
		sch.Days[i] = ScheduleDay{Day: day, Lessons: []Lesson{}}
		byDay[day] = i
	}
	for _, row := range rows {
		lsn, ok := row.(Lesson)
		if !ok {
			continue
		}
		if i, ok := byDay[lsn.Day]; ok {
			sch.Days[i].Lessons = append(sch.Days[i].Lessons, lsn)
		}
	}
	return sch, nil
}
