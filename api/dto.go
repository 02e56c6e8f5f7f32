/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON shapes for the HTTP API. Dates are "YYYY-MM-DD", clock times
  "HH:MM", hours are whole numbers except job code and shift template
  hours, which are decimals.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers and the domain packages, not in DTOs.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/jobcode"
	"github.com/schedulehq/schedule-engine/store/sqlite"
	"github.com/schedulehq/schedule-engine/storehours"
	"github.com/schedulehq/schedule-engine/timeoff"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID                   int64  `json:"id"`
	Name                 string `json:"name"`
	JobCode              string `json:"job_code"`
	VacationWeeksAllowed int    `json:"vacation_weeks_allowed"`
	VacationWeeksUsed    int    `json:"vacation_weeks_used"`
}

// SaveEmployeeRequest creates an employee, or replaces one when ID is set.
type SaveEmployeeRequest struct {
	ID                   int64  `json:"id,omitempty"`
	Name                 string `json:"name"`
	JobCode              string `json:"job_code"`
	VacationWeeksAllowed int    `json:"vacation_weeks_allowed"`
	VacationWeeksUsed    int    `json:"vacation_weeks_used"`
}

func toEmployeeDTO(e timeoff.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:                   int64(e.ID),
		Name:                 e.Name,
		JobCode:              e.JobCode,
		VacationWeeksAllowed: e.VacationWeeksAllowed,
		VacationWeeksUsed:    e.VacationWeeksUsed,
	}
}

// =============================================================================
// PTO BALANCE
// =============================================================================

type BalanceDTO struct {
	EmployeeID         int64  `json:"employee_id"`
	Trimester          string `json:"trimester"`
	TrimesterStart     string `json:"trimester_start"`
	TrimesterEnd       string `json:"trimester_end"`
	Eligible           bool   `json:"eligible"`
	Entitlement        int    `json:"entitlement"`
	Carryover          int    `json:"carryover"`
	CarryoverPersisted bool   `json:"carryover_persisted"`
	Used               int    `json:"used"`
	Remaining          int    `json:"remaining"`
	Available          int    `json:"available"`
}

func toBalanceDTO(b timeoff.PTOBalance) BalanceDTO {
	return BalanceDTO{
		EmployeeID:         int64(b.EmployeeID),
		Trimester:          generic.TrimesterLabel(b.Trimester),
		TrimesterStart:     b.Trimester.Start.String(),
		TrimesterEnd:       b.Trimester.End.String(),
		Eligible:           b.Eligible,
		Entitlement:        b.Entitlement,
		Carryover:          b.Carryover,
		CarryoverPersisted: b.CarryoverPersisted,
		Used:               b.Used,
		Remaining:          b.Remaining,
		Available:          b.Available(),
	}
}

// =============================================================================
// TIME OFF
// =============================================================================

type TimeOffDTO struct {
	ID              int64  `json:"id"`
	EmployeeID      int64  `json:"employee_id"`
	Date            string `json:"date"`
	Type            string `json:"type"`
	TypeLabel       string `json:"type_label"`
	Hours           int    `json:"hours"`
	VacationGroupID string `json:"vacation_group_id,omitempty"`
	IsAllDay        bool   `json:"is_all_day"`
	StartTime       string `json:"start_time,omitempty"`
	EndTime         string `json:"end_time,omitempty"`
}

func toTimeOffDTO(e timeoff.Entry) TimeOffDTO {
	return TimeOffDTO{
		ID:              int64(e.ID),
		EmployeeID:      int64(e.EmployeeID),
		Date:            e.Date.String(),
		Type:            string(e.Type),
		TypeLabel:       e.Type.Label(),
		Hours:           e.Hours,
		VacationGroupID: e.VacationGroupID,
		IsAllDay:        e.IsAllDay,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
	}
}

func toTimeOffDTOs(entries []timeoff.Entry) []TimeOffDTO {
	dtos := make([]TimeOffDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toTimeOffDTO(e)
	}
	return dtos
}

// TimeOffRequest records time off for the employee in the URL.
type TimeOffRequest struct {
	Type        string `json:"type"` // pto, vac/vacation, sick/requested
	StartDate   string `json:"start_date"`
	Days        int    `json:"days"`
	HoursPerDay int    `json:"hours_per_day,omitempty"`
	IsAllDay    bool   `json:"is_all_day"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	Override    bool   `json:"override,omitempty"`
}

type TimeOffResponse struct {
	Entries   []TimeOffDTO `json:"entries"`
	Conflicts []TimeOffDTO `json:"conflicts,omitempty"`
	Balance   *BalanceDTO  `json:"balance,omitempty"`
}

type DeleteTimeOffResponse struct {
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	GroupID      string `json:"vacation_group_id,omitempty"`
	Deleted      int    `json:"deleted"`
}

// =============================================================================
// SETTINGS
// =============================================================================

type SettingsDTO struct {
	PTOHoursPerTrimester int  `json:"pto_hours_per_trimester"`
	PTOHoursPerRequest   int  `json:"pto_hours_per_request"`
	MaxCarryoverHours    int  `json:"max_carryover_hours"`
	BlockOverlaps        bool `json:"block_overlaps"`
}

func toSettingsDTO(r timeoff.Rules) SettingsDTO {
	return SettingsDTO{
		PTOHoursPerTrimester: r.PTOHoursPerTrimester,
		PTOHoursPerRequest:   r.PTOHoursPerRequest,
		MaxCarryoverHours:    r.MaxCarryoverHours,
		BlockOverlaps:        r.BlockOverlaps,
	}
}

func (s SettingsDTO) rules() timeoff.Rules {
	return timeoff.Rules{
		PTOHoursPerTrimester: s.PTOHoursPerTrimester,
		PTOHoursPerRequest:   s.PTOHoursPerRequest,
		MaxCarryoverHours:    s.MaxCarryoverHours,
		BlockOverlaps:        s.BlockOverlaps,
	}
}

// =============================================================================
// JOB CODES
// =============================================================================

type JobCodeDTO struct {
	Code              string          `json:"code"`
	HasPTO            bool            `json:"has_pto"`
	DefaultDailyHours decimal.Decimal `json:"default_daily_hours"`
	MaxHoursPerWeek   decimal.Decimal `json:"max_hours_per_week"`
	ColorHex          string          `json:"color_hex"`
	SortOrder         int             `json:"sort_order"`
}

func toJobCodeDTO(s jobcode.Settings) JobCodeDTO {
	return JobCodeDTO{
		Code:              s.Code.Display(),
		HasPTO:            s.HasPTO,
		DefaultDailyHours: s.DefaultDailyHours,
		MaxHoursPerWeek:   s.MaxHoursPerWeek,
		ColorHex:          s.ColorHex,
		SortOrder:         s.SortOrder,
	}
}

// JobCodeRequest is the body of PUT /job-codes/{code}. Omitted hours and
// color fall back to the defaults.
type JobCodeRequest struct {
	HasPTO            *bool            `json:"has_pto,omitempty"`
	DefaultDailyHours *decimal.Decimal `json:"default_daily_hours,omitempty"`
	MaxHoursPerWeek   *decimal.Decimal `json:"max_hours_per_week,omitempty"`
	ColorHex          string           `json:"color_hex,omitempty"`
	SortOrder         int              `json:"sort_order,omitempty"`
}

func (r JobCodeRequest) settings(code jobcode.Code) jobcode.Settings {
	s := jobcode.DefaultSettings(code)
	if r.HasPTO != nil {
		s.HasPTO = *r.HasPTO
	}
	if r.DefaultDailyHours != nil {
		s.DefaultDailyHours = *r.DefaultDailyHours
	}
	if r.MaxHoursPerWeek != nil {
		s.MaxHoursPerWeek = *r.MaxHoursPerWeek
	}
	if r.ColorHex != "" {
		s.ColorHex = r.ColorHex
	}
	s.SortOrder = r.SortOrder
	return s
}

type RenameJobCodeRequest struct {
	To string `json:"to"`
}

type ReorderJobCodesRequest struct {
	Codes []string `json:"codes"`
}

// =============================================================================
// STORE HOURS
// =============================================================================

type StoreDayDTO struct {
	Weekday string `json:"weekday"`
	Open    string `json:"open"`
	Close   string `json:"close"`
	Closed  bool   `json:"closed"`
}

func toStoreHoursDTO(h storehours.Hours) []StoreDayDTO {
	dtos := make([]StoreDayDTO, len(h))
	for i, d := range h {
		dtos[i] = StoreDayDTO{Weekday: d.Weekday.String(), Open: d.Open, Close: d.Close, Closed: d.Closed}
	}
	return dtos
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

// =============================================================================
// SHIFT TEMPLATES
// =============================================================================

type ShiftTemplateDTO struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	JobCode            string          `json:"job_code"`
	StartTime          string          `json:"start_time"`
	EndTime            string          `json:"end_time"`
	WeeklyHours        decimal.Decimal `json:"weekly_hours"`
	ExceedsWeeklyLimit bool            `json:"exceeds_weekly_limit"`
}

type ShiftTemplateRequest struct {
	Name      string `json:"name"`
	JobCode   string `json:"job_code"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (r ShiftTemplateRequest) template() sqlite.ShiftTemplate {
	return sqlite.ShiftTemplate{Name: r.Name, JobCode: r.JobCode, StartTime: r.StartTime, EndTime: r.EndTime}
}

// =============================================================================
// ADMIN
// =============================================================================

// CloseTrimesterRequest closes the trimester containing Date, for one
// employee when EmployeeID is set and for everyone otherwise.
type CloseTrimesterRequest struct {
	Date       string `json:"date"`
	EmployeeID int64  `json:"employee_id,omitempty"`
}

type HistoryDTO struct {
	EmployeeID     int64  `json:"employee_id"`
	TrimesterStart string `json:"trimester_start"`
	CarryoverHours int    `json:"carryover_hours"`
}

func toHistoryDTO(r timeoff.HistoryRecord) HistoryDTO {
	return HistoryDTO{
		EmployeeID:     int64(r.EmployeeID),
		TrimesterStart: r.TrimesterStart.String(),
		CarryoverHours: r.CarryoverHours,
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx reply. The optional fields are
// filled for the errors that carry them.
type ErrorResponse struct {
	Error     string       `json:"error"`
	Details   string       `json:"details,omitempty"`
	Conflicts []TimeOffDTO `json:"conflicts,omitempty"`
	Blocked   bool         `json:"blocked,omitempty"`
	Requested int          `json:"requested,omitempty"`
	Available *int         `json:"available,omitempty"`
}
