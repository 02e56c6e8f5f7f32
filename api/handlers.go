/*
handlers.go - HTTP API handlers for the schedule engine

PURPOSE:
  Exposes employees, time off, PTO balances and the manager settings over
  REST. Handlers parse and validate input, call the domain services, and
  serialize the result. All rule enforcement lives in the timeoff package.

ENDPOINTS:
  Employees:
    GET    /api/employees                      List employees
    POST   /api/employees                      Create or replace employee
    GET    /api/employees/{id}                 Get employee
    DELETE /api/employees/{id}                 Delete employee and their time off
    GET    /api/employees/{id}/pto?date=       PTO balance for the trimester of date
    GET    /api/employees/{id}/time-off        Time off in [from, to]
    GET    /api/employees/{id}/conflicts       Existing entries in [start, end]
    POST   /api/employees/{id}/time-off        Record time off

  Time off:
    DELETE /api/time-off/{id}                  Delete entry (whole vacation group)

  Settings:
    GET/PUT /api/settings                      PTO rules
    GET     /api/job-codes                     Job code settings
    PUT     /api/job-codes/{code}              Create or update a job code
    POST    /api/job-codes/{code}/rename       Rename code and references
    POST    /api/job-codes/reorder             Set display order
    GET/PUT /api/store-hours                   Opening hours per weekday
    GET/POST /api/shift-templates, DELETE /api/shift-templates/{id}

  Admin:
    POST   /api/admin/close-trimester          Bank carryover
    POST   /api/sync/upload, /api/sync/download
    GET    /api/reports/time-off.xlsx

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Overlapping time off, insufficient PTO, duplicate job code
  - 503: Sync not configured
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/schedulehq/schedule-engine/cloudsync"
	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/jobcode"
	"github.com/schedulehq/schedule-engine/report"
	"github.com/schedulehq/schedule-engine/store/sqlite"
	"github.com/schedulehq/schedule-engine/storehours"
	"github.com/schedulehq/schedule-engine/timeoff"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Accrual *timeoff.AccrualService
	TimeOff *timeoff.Service
	Hours   *storehours.Cache

	// Sync is nil when no backup mirror is configured.
	Sync *cloudsync.Syncer

	logger logrus.FieldLogger
	today  func() generic.Date
}

// NewHandler builds the services over store.
func NewHandler(store *sqlite.Store, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	accrual := timeoff.NewAccrualService(store).WithLogger(logger)
	return &Handler{
		Store:   store,
		Accrual: accrual,
		TimeOff: timeoff.NewService(store, accrual).WithLogger(logger),
		Hours:   storehours.NewCache(store, logger),
		logger:  logger,
		today:   generic.Today,
	}
}

// WithSyncer enables the sync routes.
func (h *Handler) WithSyncer(s *cloudsync.Syncer) *Handler {
	h.Sync = s
	return h
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// SaveEmployee creates an employee, or replaces the one named by ID.
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp := timeoff.Employee{
		ID:                   timeoff.EmployeeID(req.ID),
		Name:                 req.Name,
		JobCode:              req.JobCode,
		VacationWeeksAllowed: req.VacationWeeksAllowed,
		VacationWeeksUsed:    req.VacationWeeksUsed,
	}
	id, err := h.Store.SaveEmployee(r.Context(), emp)
	if err != nil {
		h.writeDomainError(w, "Failed to save employee", err)
		return
	}

	saved, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil || saved == nil {
		h.writeDomainError(w, "Failed to reload employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(*saved))
}

// DeleteEmployee removes an employee, their time off and PTO history.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id", err)
		return
	}
	if err := h.Store.DeleteEmployee(r.Context(), timeoff.EmployeeID(id)); err != nil {
		h.writeDomainError(w, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBalance returns the PTO breakdown for the trimester containing ?date=
// (default today).
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	date, err := h.dateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	balance, err := h.Accrual.RemainingForDate(r.Context(), emp.ID, date)
	if err != nil {
		h.writeDomainError(w, "Failed to compute PTO balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// =============================================================================
// TIME-OFF HANDLERS
// =============================================================================

// ListTimeOff returns the employee's entries in [from, to]. Both default to
// the trimester containing today.
func (h *Handler) ListTimeOff(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	span := generic.TrimesterFor(h.today())
	from, err := dateParamOr(r, "from", span.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := dateParamOr(r, "to", span.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}

	entries, err := h.TimeOff.List(r.Context(), emp.ID, from, to)
	if err != nil {
		h.writeDomainError(w, "Failed to list time off", err)
		return
	}
	writeJSON(w, http.StatusOK, toTimeOffDTOs(entries))
}

// GetConflicts returns existing entries in [start, end], inclusive.
func (h *Handler) GetConflicts(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	start, err := generic.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return
	}
	end, err := generic.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return
	}

	conflicts, err := h.TimeOff.Conflicts(r.Context(), emp.ID, start, end)
	if err != nil {
		h.writeDomainError(w, "Failed to check conflicts", err)
		return
	}
	writeJSON(w, http.StatusOK, toTimeOffDTOs(conflicts))
}

// RecordTimeOff applies the PTO and overlap rules and records time off.
func (h *Handler) RecordTimeOff(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id", err)
		return
	}
	var body TimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	typ, err := timeoff.ParseType(body.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time off type", err)
		return
	}
	start, err := generic.ParseDate(body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	if body.Days == 0 {
		body.Days = 1
	}

	result, err := h.TimeOff.Request(r.Context(), timeoff.Request{
		EmployeeID:  timeoff.EmployeeID(id),
		Type:        typ,
		Start:       start,
		Days:        body.Days,
		HoursPerDay: body.HoursPerDay,
		IsAllDay:    body.IsAllDay,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		Override:    body.Override,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to record time off", err)
		return
	}

	resp := TimeOffResponse{Entries: toTimeOffDTOs(result.Entries)}
	if len(result.Conflicts) > 0 {
		resp.Conflicts = toTimeOffDTOs(result.Conflicts)
	}
	if result.Balance != nil {
		b := toBalanceDTO(*result.Balance)
		resp.Balance = &b
	}
	writeJSON(w, http.StatusCreated, resp)
}

// DeleteTimeOff deletes an entry, or its whole vacation group.
func (h *Handler) DeleteTimeOff(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid time off id", err)
		return
	}

	result, err := h.TimeOff.Delete(r.Context(), timeoff.EntryID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to delete time off", err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteTimeOffResponse{
		EmployeeID:   int64(result.EmployeeID),
		EmployeeName: result.EmployeeName,
		GroupID:      result.GroupID,
		Deleted:      result.Count,
	})
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Store.GetSettings(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(rules))
}

func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Store.SaveSettings(r.Context(), req.rules()); err != nil {
		h.writeDomainError(w, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// =============================================================================
// JOB CODE HANDLERS
// =============================================================================

func (h *Handler) ListJobCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.Store.ListJobCodes(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list job codes", err)
		return
	}
	dtos := make([]JobCodeDTO, len(codes))
	for i, c := range codes {
		dtos[i] = toJobCodeDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveJobCode creates or updates the code in the URL. Matching ignores case
// and keeps the stored casing.
func (h *Handler) SaveJobCode(w http.ResponseWriter, r *http.Request) {
	code := jobcode.NewCode(chi.URLParam(r, "code"))
	var req JobCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Store.SaveJobCode(r.Context(), req.settings(code)); err != nil {
		h.writeDomainError(w, "Failed to save job code", err)
		return
	}
	saved, err := h.Store.GetJobCodeSettings(r.Context(), code)
	if err != nil || saved == nil {
		h.writeDomainError(w, "Failed to reload job code", err)
		return
	}
	writeJSON(w, http.StatusOK, toJobCodeDTO(*saved))
}

func (h *Handler) RenameJobCode(w http.ResponseWriter, r *http.Request) {
	from := jobcode.NewCode(chi.URLParam(r, "code"))
	var req RenameJobCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	to := jobcode.NewCode(req.To)
	if err := h.Store.RenameJobCode(r.Context(), from, to); err != nil {
		h.writeDomainError(w, "Failed to rename job code", err)
		return
	}
	h.ListJobCodes(w, r)
}

func (h *Handler) ReorderJobCodes(w http.ResponseWriter, r *http.Request) {
	var req ReorderJobCodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	codes := make([]jobcode.Code, len(req.Codes))
	for i, c := range req.Codes {
		codes[i] = jobcode.NewCode(c)
	}
	if err := h.Store.ReorderJobCodes(r.Context(), codes); err != nil {
		h.writeDomainError(w, "Failed to reorder job codes", err)
		return
	}
	h.ListJobCodes(w, r)
}

// =============================================================================
// STORE HOURS HANDLERS
// =============================================================================

func (h *Handler) GetStoreHours(w http.ResponseWriter, r *http.Request) {
	hours, err := h.Hours.Get(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to load store hours", err)
		return
	}
	writeJSON(w, http.StatusOK, toStoreHoursDTO(hours))
}

// SaveStoreHours updates the weekdays listed in the body. Weekdays left out
// keep their current hours.
func (h *Handler) SaveStoreHours(w http.ResponseWriter, r *http.Request) {
	var req []StoreDayDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hours, err := h.Hours.Get(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to load store hours", err)
		return
	}
	for _, d := range req {
		wd, ok := weekdays[strings.ToLower(strings.TrimSpace(d.Weekday))]
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid weekday", fmt.Errorf("unknown weekday %q", d.Weekday))
			return
		}
		hours[wd] = storehours.Day{Weekday: wd, Open: d.Open, Close: d.Close, Closed: d.Closed}
	}

	if err := h.Hours.Save(r.Context(), hours); err != nil {
		h.writeDomainError(w, "Failed to save store hours", err)
		return
	}
	h.GetStoreHours(w, r)
}

// =============================================================================
// SHIFT TEMPLATE HANDLERS
// =============================================================================

func (h *Handler) ListShiftTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templates, err := h.Store.ListShiftTemplates(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to list shift templates", err)
		return
	}
	codes, err := h.Store.ListJobCodes(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to list job codes", err)
		return
	}

	dtos := make([]ShiftTemplateDTO, len(templates))
	for i, t := range templates {
		dtos[i] = toShiftTemplateDTO(t, codes)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ShiftTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	t := req.template()
	id, err := h.Store.SaveShiftTemplate(ctx, t)
	if err != nil {
		h.writeDomainError(w, "Failed to save shift template", err)
		return
	}
	t.ID = id

	codes, err := h.Store.ListJobCodes(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to list job codes", err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftTemplateDTO(t, codes))
}

func (h *Handler) DeleteShiftTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift template id", err)
		return
	}
	if err := h.Store.DeleteShiftTemplate(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete shift template", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toShiftTemplateDTO(t sqlite.ShiftTemplate, codes []jobcode.Settings) ShiftTemplateDTO {
	weekly := t.WeeklyHours()
	return ShiftTemplateDTO{
		ID:                 t.ID,
		Name:               t.Name,
		JobCode:            t.JobCode,
		StartTime:          t.StartTime,
		EndTime:            t.EndTime,
		WeeklyHours:        weekly,
		ExceedsWeeklyLimit: jobcode.Lookup(codes, jobcode.NewCode(t.JobCode)).WeeklyLimitExceeded(weekly),
	}
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// CloseTrimester banks carryover out of the trimester containing date.
func (h *Handler) CloseTrimester(w http.ResponseWriter, r *http.Request) {
	var req CloseTrimesterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	var records []timeoff.HistoryRecord
	if req.EmployeeID != 0 {
		rec, err := h.Accrual.CloseTrimester(r.Context(), timeoff.EmployeeID(req.EmployeeID), date)
		if err != nil {
			h.writeDomainError(w, "Failed to close trimester", err)
			return
		}
		records = append(records, rec)
	} else {
		records, err = h.Accrual.CloseTrimesterAll(r.Context(), date)
		if err != nil {
			h.writeDomainError(w, "Failed to close trimester", err)
			return
		}
	}

	dtos := make([]HistoryDTO, len(records))
	for i, rec := range records {
		dtos[i] = toHistoryDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SYNC HANDLERS
// =============================================================================

func (h *Handler) UploadBackup(w http.ResponseWriter, r *http.Request) {
	if h.Sync == nil {
		writeError(w, http.StatusServiceUnavailable, "Sync is not configured", nil)
		return
	}
	summary, err := h.Sync.Upload(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Upload failed", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) DownloadBackup(w http.ResponseWriter, r *http.Request) {
	if h.Sync == nil {
		writeError(w, http.StatusServiceUnavailable, "Sync is not configured", nil)
		return
	}
	summary, err := h.Sync.Download(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Download failed", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// ExportTimeOff streams an XLSX with every entry in [from, to] and each
// employee's PTO balance for the trimester containing date. from and to
// default to that trimester.
func (h *Handler) ExportTimeOff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date, err := h.dateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	span := generic.TrimesterFor(date)
	from, err := dateParamOr(r, "from", span.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := dateParamOr(r, "to", span.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}
	if err := (generic.Period{Start: from, End: to}).Validate(); err != nil {
		h.writeDomainError(w, "Invalid range", err)
		return
	}

	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to list employees", err)
		return
	}
	entries, err := h.Store.TimeOffBetween(ctx, from, to)
	if err != nil {
		h.writeDomainError(w, "Failed to list time off", err)
		return
	}
	balances := make([]timeoff.PTOBalance, 0, len(employees))
	for _, e := range employees {
		b, err := h.Accrual.RemainingForDate(ctx, e.ID, date)
		if err != nil {
			h.writeDomainError(w, "Failed to compute PTO balance", err)
			return
		}
		balances = append(balances, b)
	}

	// Buffer so a failed write still gets a JSON error.
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, report.Workbook{Employees: employees, Entries: entries, Balances: balances}); err != nil {
		h.writeDomainError(w, "Failed to build report", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="time-off-%s-%s.xlsx"`, from, to))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// =============================================================================
// HELPERS
// =============================================================================

// loadEmployee resolves {id} and writes the 400/404 itself when it fails.
func (h *Handler) loadEmployee(w http.ResponseWriter, r *http.Request) (*timeoff.Employee, bool) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id", err)
		return nil, false
	}
	emp, err := h.Store.GetEmployee(r.Context(), timeoff.EmployeeID(id))
	if err != nil {
		h.writeDomainError(w, "Failed to get employee", err)
		return nil, false
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return nil, false
	}
	return emp, true
}

func (h *Handler) dateParam(r *http.Request, name string) (generic.Date, error) {
	return dateParamOr(r, name, h.today())
}

func dateParamOr(r *http.Request, name string, fallback generic.Date) (generic.Date, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	return generic.ParseDate(v)
}

func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// writeDomainError maps domain errors to HTTP status codes. Rule violations
// carry their details in the body so the client can show them.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	if err == nil {
		writeError(w, http.StatusInternalServerError, message, nil)
		return
	}

	var overlap *timeoff.OverlapError
	if errors.As(err, &overlap) {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:     message,
			Details:   err.Error(),
			Conflicts: toTimeOffDTOs(overlap.Conflicts),
			Blocked:   overlap.Blocked,
		})
		return
	}
	var insufficient *timeoff.InsufficientPTOError
	if errors.As(err, &insufficient) {
		available := insufficient.Available
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:     message,
			Details:   err.Error(),
			Requested: insufficient.Requested,
			Available: &available,
		})
		return
	}

	switch {
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, generic.ErrDuplicate):
		writeError(w, http.StatusConflict, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.logger.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
