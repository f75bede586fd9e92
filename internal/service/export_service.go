package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-ops/backend/internal/model"
	"course-ops/backend/internal/repository"
)

// ── export errors ──

var (
	ErrExportNoTeams      = errors.New("course has no teams to export")
	ErrExportGenerateFail = errors.New("failed to generate the spreadsheet")
)

// ExportService file exports
type ExportService interface {
	// ExportCourseTeams renders the course's team roster as .xlsx and
	// returns the file content with a suggested file name.
	ExportCourseTeams(ctx context.Context, p Principal, courseID string) (*bytes.Buffer, string, error)
	ExportFormationDeadline(ctx context.Context, courseID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportCourseTeams
// ═══════════════════════════════════════════════════════════
//
// Sheet "Teams": one row per member, grouped by team, leader first.
// Sheet "Unassigned": APPROVED students of the course without a team.

func (s *exportService) ExportCourseTeams(ctx context.Context, p Principal, courseID string) (*bytes.Buffer, string, error) {
	// 1. course and access
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrCourseNotFound
		}
		s.logger.Error("load course failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, "", err
	}
	if !canManageCourse(p, course) {
		return nil, "", ErrForbidden
	}

	// 2. teams with members
	teams, err := s.repo.Team.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("list teams failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, "", err
	}
	if len(teams) == 0 {
		return nil, "", ErrExportNoTeams
	}

	// 3. approved students, to list those still without a team
	approved, err := s.repo.Enrollment.ListByCourse(ctx, courseID, model.EnrollmentApproved)
	if err != nil {
		s.logger.Error("list enrollments failed", zap.String("course_id", courseID), zap.Error(err))
		return nil, "", err
	}
	inTeam := make(map[string]bool)
	for _, t := range teams {
		for _, m := range t.Members {
			inTeam[m.EnrollmentID] = true
		}
	}

	// 4. workbook
	f := excelize.NewFile()
	defer f.Close()

	const teamSheet = "Teams"
	idx, _ := f.NewSheet(teamSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(teamSheet, "A", "A", 28)
	f.SetColWidth(teamSheet, "B", "C", 12)
	f.SetColWidth(teamSheet, "D", "D", 26)
	f.SetColWidth(teamSheet, "E", "E", 32)
	f.SetColWidth(teamSheet, "F", "F", 22)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// title row
	f.SetCellValue(teamSheet, "A1", fmt.Sprintf("%s %s - team roster", course.Code, course.Name))
	f.MergeCell(teamSheet, "A1", "F1")
	f.SetCellStyle(teamSheet, "A1", "A1", headerStyle)

	// header
	headers := []string{"Team", "Status", "Role", "Full name", "Email", "Joined at"}
	for i, h := range headers {
		f.SetCellValue(teamSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(teamSheet, "A2", "F2", headerStyle)

	// data rows; members are loaded in join order, so the founding leader
	// comes first unless leadership was transferred
	row := 3
	for _, t := range teams {
		members := append(t.Members[:0:0], t.Members...)
		if leader := t.Leader(); leader != nil {
			for i := range members {
				if members[i].MemberID == leader.MemberID && i > 0 {
					members[0], members[i] = members[i], members[0]
					break
				}
			}
		}
		for _, m := range members {
			name, email := "", ""
			if m.User != nil {
				name, email = m.User.FullName, m.User.Email
			}
			f.SetCellValue(teamSheet, cell("A", row), t.Name)
			f.SetCellValue(teamSheet, cell("B", row), t.Status())
			f.SetCellValue(teamSheet, cell("C", row), m.Role)
			f.SetCellValue(teamSheet, cell("D", row), name)
			f.SetCellValue(teamSheet, cell("E", row), email)
			f.SetCellValue(teamSheet, cell("F", row), m.JoinedAt.UTC().Format("2006-01-02 15:04"))
			row++
		}
	}

	const restSheet = "Unassigned"
	f.NewSheet(restSheet)
	f.SetColWidth(restSheet, "A", "A", 26)
	f.SetColWidth(restSheet, "B", "B", 32)
	f.SetCellValue(restSheet, "A1", "Full name")
	f.SetCellValue(restSheet, "B1", "Email")
	f.SetCellStyle(restSheet, "A1", "B1", headerStyle)
	row = 2
	for _, e := range approved {
		if inTeam[e.EnrollmentID] || e.User == nil {
			continue
		}
		f.SetCellValue(restSheet, cell("A", row), e.User.FullName)
		f.SetCellValue(restSheet, cell("B", row), e.User.Email)
		row++
	}

	// 5. write out
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write xlsx failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("teams_%s.xlsx", course.Code), nil
}

// ── helpers ──

// colName converts a 0-based column index to its letter form.
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
