package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrExportNoDeadline = errors.New("course has no team formation deadline")

const calendarProductID = "-//course-ops//team formation//EN"

// ExportFormationDeadline renders the course's team formation deadline as a
// single-event iCalendar file. The event UID is stable per course, so
// re-importing after the deadline moves updates the entry in place.
func (s *exportService) ExportFormationDeadline(ctx context.Context, courseID string) (*bytes.Buffer, string, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrCourseNotFound
		}
		s.logger.Error("load course failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, "", err
	}
	if course.TeamFormationDeadline == nil {
		return nil, "", ErrExportNoDeadline
	}
	deadline := course.TeamFormationDeadline.UTC()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	event := cal.AddEvent(fmt.Sprintf("team-formation-%s@course-ops", course.CourseID))
	event.SetDtStampTime(time.Now().UTC())
	if !course.UpdatedAt.IsZero() {
		event.SetModifiedAt(course.UpdatedAt.UTC())
	}
	event.SetStartAt(deadline)
	event.SetEndAt(deadline)
	event.SetSummary(fmt.Sprintf("%s team formation deadline", course.Code))
	event.SetDescription(fmt.Sprintf("Teams for %s %s must be complete by this time.", course.Code, course.Name))

	return bytes.NewBufferString(cal.Serialize()), fmt.Sprintf("team_deadline_%s.ics", course.Code), nil
}
