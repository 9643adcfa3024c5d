package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/internal/repository"
)

// ExportService renders the roster and attendance window as an Excel
// workbook, and a member's duty assignments as an iCalendar feed for phone
// calendars.
type ExportService interface {
	RosterWorkbook(ctx context.Context, from, to time.Time) (*excelize.File, error)
	PersonalCalendar(ctx context.Context, memberID string, from, to time.Time) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ── xlsx ──

const (
	rosterSheet     = "Servicii"
	attendanceSheet = "Prezență"
)

func (s *exportService) RosterWorkbook(ctx context.Context, from, to time.Time) (*excelize.File, error) {
	from, to = model.NormalizeDay(from), model.NormalizeDay(to)
	if to.Before(from) {
		from, to = to, from
	}
	if int(to.Sub(from).Hours()/24) >= maxRangeDays {
		return nil, ErrRangeTooWide
	}

	members, err := s.repo.Member.List(ctx)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]string, len(members))
	for i := range members {
		labels[members[i].MemberID] = members[i].FullIdentity()
	}

	dutyDays, err := s.repo.DutyDay.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]*model.DutyDay, len(dutyDays))
	for i := range dutyDays {
		byDay[model.DayKey(dutyDays[i].Day)] = &dutyDays[i]
	}

	recs, err := s.repo.DayRecord.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := s.writeRosterSheet(f, from, to, byDay, labels); err != nil {
		f.Close()
		return nil, err
	}
	if err := s.writeAttendanceSheet(f, from, to, members, recs); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (s *exportService) writeRosterSheet(
	f *excelize.File,
	from, to time.Time,
	byDay map[string]*model.DutyDay,
	labels map[string]string,
) error {
	f.SetSheetName("Sheet1", rosterSheet)

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellValue(rosterSheet, "A1", "Data"); err != nil {
		return err
	}
	for i, role := range model.RoleNames {
		cell, err := excelize.CoordinatesToCellName(i+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(rosterSheet, cell, role); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(model.SlotCount+1, 1)
	if err := f.SetCellStyle(rosterSheet, "A1", last, header); err != nil {
		return err
	}
	if err := f.SetColWidth(rosterSheet, "A", "I", 26); err != nil {
		return err
	}

	row := 2
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dd, ok := byDay[model.DayKey(d)]
		if !ok {
			dd = model.NewDutyDay(d)
		}

		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(rosterSheet, cell, model.DayKey(d)); err != nil {
			return err
		}
		for i := 0; i < model.SlotCount; i++ {
			label := model.ExternalLabel
			if dd.Mode == model.ModeSingleIntervention && i == model.SlotIntervention2 {
				label = "—"
			} else if slot := dd.Slot(i); slot != nil {
				if o := slot.Occupant(); o.IsMember() {
					if l, ok := labels[o.MemberID]; ok {
						label = l
					} else {
						label = o.MemberID
					}
				}
			}
			cell, _ := excelize.CoordinatesToCellName(i+2, row)
			if err := f.SetCellValue(rosterSheet, cell, label); err != nil {
				return err
			}
		}
		row++
	}
	return nil
}

func (s *exportService) writeAttendanceSheet(
	f *excelize.File,
	from, to time.Time,
	members []model.Member,
	recs []model.MemberDayRecord,
) error {
	if _, err := f.NewSheet(attendanceSheet); err != nil {
		return err
	}

	statuses := make(map[string]map[string]model.StatusKind, len(members))
	for _, rec := range recs {
		if statuses[rec.MemberID] == nil {
			statuses[rec.MemberID] = make(map[string]model.StatusKind)
		}
		statuses[rec.MemberID][model.DayKey(rec.Day)] = rec.Status
	}

	if err := f.SetCellValue(attendanceSheet, "A1", "Militar"); err != nil {
		return err
	}
	col := 2
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		cell, _ := excelize.CoordinatesToCellName(col, 1)
		if err := f.SetCellValue(attendanceSheet, cell, model.DayKey(d)); err != nil {
			return err
		}
		col++
	}
	if err := f.SetColWidth(attendanceSheet, "A", "A", 34); err != nil {
		return err
	}

	for i := range members {
		m := &members[i]
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(attendanceSheet, cell, m.FullIdentity()); err != nil {
			return err
		}
		col = 2
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			st := model.StatusUnspecified
			if md := statuses[m.MemberID]; md != nil {
				st = md[model.DayKey(d)]
			}
			cell, _ := excelize.CoordinatesToCellName(col, row)
			if err := f.SetCellValue(attendanceSheet, cell, st.Label()); err != nil {
				return err
			}
			col++
		}
	}
	return nil
}

// ── ics ──

func (s *exportService) PersonalCalendar(ctx context.Context, memberID string, from, to time.Time) (string, error) {
	member, err := s.repo.Member.GetByID(ctx, memberID)
	if err != nil {
		return "", ErrUnknownMember
	}

	duties, err := s.repo.DutyDay.ListMemberDuties(ctx, memberID, from, to)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//La Serviciu//Duty Roster//RO")
	cal.SetName("Servicii " + member.FullIdentity())

	now := time.Now().UTC()
	for _, duty := range duties {
		day := model.NormalizeDay(duty.Day)
		uid := fmt.Sprintf("%s-%s-%d@la-serviciu", memberID, model.DayKey(day), duty.SlotIndex)

		event := cal.AddEvent(uid)
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary("Serviciu: " + model.RoleName(duty.SlotIndex))
		event.SetDescription(member.FullIdentity())
	}
	return cal.Serialize(), nil
}
