package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Andrei050191/La-serviciu/config"
	"github.com/Andrei050191/La-serviciu/internal/dto"
	"github.com/Andrei050191/La-serviciu/internal/model"
	"github.com/Andrei050191/La-serviciu/internal/repository"
)

var (
	ErrInvalidImportFile = errors.New("import file is not a readable workbook")
	ErrCodeTaken         = errors.New("login code already in use")
)

var codePattern = regexp.MustCompile(`^\d{4}$`)

// MemberService exposes the person directory with its per-day attendance
// window, spreadsheet import, and the bootstrap admin seed.
type MemberService interface {
	List(ctx context.Context, from, to time.Time) ([]dto.MemberWithDaysResponse, error)
	Get(ctx context.Context, memberID string, from, to time.Time) (*dto.MemberWithDaysResponse, error)
	ImportMembers(ctx context.Context, r io.Reader, operatorID string) (*dto.ImportMembersResponse, error)
	// EnsureBootstrapAdmin seeds the administrator account when the
	// directory is empty, so a fresh deployment can be logged into.
	EnsureBootstrapAdmin(ctx context.Context) error
}

type memberService struct {
	repo               *repository.Repository
	bootstrapAdminCode string
	notifier           Notifier
	logger             *zap.Logger
}

func NewMemberService(repo *repository.Repository, cfg *config.Config, notifier Notifier, logger *zap.Logger) MemberService {
	return &memberService{
		repo:               repo,
		bootstrapAdminCode: cfg.Auth.BootstrapAdminCode,
		notifier:           notifier,
		logger:             logger,
	}
}

// ── reads ──

func (s *memberService) List(ctx context.Context, from, to time.Time) ([]dto.MemberWithDaysResponse, error) {
	members, err := s.repo.Member.List(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.DayRecord.ListRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	days := make(map[string]map[string]dto.DayRecordResponse, len(members))
	for _, rec := range recs {
		if days[rec.MemberID] == nil {
			days[rec.MemberID] = make(map[string]dto.DayRecordResponse)
		}
		days[rec.MemberID][model.DayKey(rec.Day)] = dayRecordDTO(&rec)
	}

	out := make([]dto.MemberWithDaysResponse, 0, len(members))
	for i := range members {
		m := &members[i]
		md := days[m.MemberID]
		if md == nil {
			md = map[string]dto.DayRecordResponse{}
		}
		out = append(out, dto.MemberWithDaysResponse{
			MemberResponse: memberDTO(m),
			Days:           md,
		})
	}
	return out, nil
}

func (s *memberService) Get(ctx context.Context, memberID string, from, to time.Time) (*dto.MemberWithDaysResponse, error) {
	m, err := s.repo.Member.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownMember
		}
		return nil, err
	}
	recs, err := s.repo.DayRecord.ListByMemberRange(ctx, memberID, from, to)
	if err != nil {
		return nil, err
	}

	resp := &dto.MemberWithDaysResponse{
		MemberResponse: memberDTO(m),
		Days:           make(map[string]dto.DayRecordResponse, len(recs)),
	}
	for i := range recs {
		resp.Days[model.DayKey(recs[i].Day)] = dayRecordDTO(&recs[i])
	}
	return resp, nil
}

// ── import ──

// Import workbook layout, first sheet, one header row:
// Grad | Nume | Prenume | Cod | Rol
const importColumns = 5

func (s *memberService) ImportMembers(ctx context.Context, r io.Reader, operatorID string) (*dto.ImportMembersResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrInvalidImportFile
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, ErrInvalidImportFile
	}

	existing, err := s.repo.Member.List(ctx)
	if err != nil {
		return nil, err
	}
	nextSort := 0
	for _, m := range existing {
		if m.SortOrder >= nextSort {
			nextSort = m.SortOrder + 1
		}
	}

	resp := &dto.ImportMembersResponse{}
	var batch []model.Member
	var plainCodes []string

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rowNum := i + 1
		resp.Total++

		m, code, reason := s.parseImportRow(row)
		if reason == "" && s.codeInUse(code, existing, plainCodes) {
			reason = "login code already in use"
		}
		if reason != "" {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportMemberError{Row: rowNum, Reason: reason})
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing login code: %w", err)
		}
		m.CodeHash = string(hash)
		m.SortOrder = nextSort
		m.CreatedBy = &operatorID
		m.UpdatedBy = &operatorID
		nextSort++

		batch = append(batch, *m)
		plainCodes = append(plainCodes, code)
	}

	if err := s.repo.Member.BatchCreate(ctx, batch); err != nil {
		return nil, err
	}
	resp.Created = len(batch)

	if resp.Created > 0 {
		s.logger.Info("members imported",
			zap.Int("created", resp.Created), zap.Int("failed", resp.Failed))
		s.notifier.Publish(ctx, dto.ChangeEvent{Type: dto.EventDirectory})
	}
	return resp, nil
}

func (s *memberService) parseImportRow(row []string) (*model.Member, string, string) {
	cells := make([]string, importColumns)
	for i := 0; i < importColumns && i < len(row); i++ {
		cells[i] = strings.TrimSpace(row[i])
	}

	m := &model.Member{
		Rank:      cells[0],
		LastName:  cells[1],
		FirstName: cells[2],
		Role:      model.RoleMember,
	}
	code := cells[3]

	switch {
	case m.Rank == "":
		return nil, "", "missing rank"
	case m.LastName == "":
		return nil, "", "missing last name"
	case m.FirstName == "":
		return nil, "", "missing first name"
	case !codePattern.MatchString(code):
		return nil, "", "login code must be exactly 4 digits"
	}

	if cells[4] != "" {
		role := strings.ToLower(cells[4])
		if role != model.RoleAdmin && role != model.RoleMember {
			return nil, "", "role must be admin or member"
		}
		m.Role = role
	}
	return m, code, ""
}

// codeInUse checks a candidate code against both the stored directory and
// the codes accepted earlier in the same import. Login is by code alone, so
// codes must be unique across the roster.
func (s *memberService) codeInUse(code string, existing []model.Member, pending []string) bool {
	for _, p := range pending {
		if p == code {
			return true
		}
	}
	for i := range existing {
		if bcrypt.CompareHashAndPassword([]byte(existing[i].CodeHash), []byte(code)) == nil {
			return true
		}
	}
	return false
}

// ── bootstrap ──

func (s *memberService) EnsureBootstrapAdmin(ctx context.Context) error {
	n, err := s.repo.Member.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.bootstrapAdminCode), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing bootstrap code: %w", err)
	}

	admin := &model.Member{
		Rank:      "Plt.adj.",
		FirstName: "Administrator",
		LastName:  "Sistem",
		CodeHash:  string(hash),
		Role:      model.RoleAdmin,
	}
	if err := s.repo.Member.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("bootstrap administrator created",
		zap.String("member_id", admin.MemberID))
	return nil
}

// ── dto mapping ──

func memberDTO(m *model.Member) dto.MemberResponse {
	return dto.MemberResponse{
		ID:        m.MemberID,
		Rank:      m.Rank,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Role:      m.Role,
		SortOrder: m.SortOrder,
	}
}

func dayRecordDTO(rec *model.MemberDayRecord) dto.DayRecordResponse {
	return dto.DayRecordResponse{
		Status:       string(rec.Status),
		StatusLabel:  rec.Status.Label(),
		MealReserved: rec.MealReserved,
	}
}
