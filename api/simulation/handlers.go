package simulation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cavusmuhammed68/ICC-IEEE/config"
	"github.com/cavusmuhammed68/ICC-IEEE/core/dispatch"
	"github.com/cavusmuhammed68/ICC-IEEE/core/metrics/eco"
	"github.com/cavusmuhammed68/ICC-IEEE/core/series"
	"github.com/cavusmuhammed68/ICC-IEEE/core/trace"
)

// Dispatch handles POST /api/v1/dispatch.
func (s *Server) Dispatch(c *gin.Context) {
	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	variant := req.Variant
	if variant == "" {
		variant = dispatch.VariantStandalone
	}
	dcfg, err := s.svc.Config().Variant(variant)
	if err != nil {
		abortError(c, http.StatusBadRequest, "INVALID_VARIANT", err.Error())
		return
	}
	if req.Battery != nil {
		dcfg.Battery = *req.Battery
	}
	if req.FuelCell != nil {
		dcfg.FuelCell = *req.FuelCell
	}
	if req.InitialSoCKWh != nil {
		dcfg.InitialSoCKWh = *req.InitialSoCKWh
	}
	if req.ChargeFromSurplus != nil {
		dcfg.ChargeFromSurplus = *req.ChargeFromSurplus
	}
	if req.Rates != nil {
		rates, err := dispatch.NewRateSelector(*req.Rates)
		if err != nil {
			abortError(c, http.StatusBadRequest, "INVALID_RATES", err.Error())
			return
		}
		dcfg.Rates = rates
	}

	out, err := s.svc.Run(c.Request.Context(), dcfg, req.TimeSteps())
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrInvalidConfig):
			abortError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		case errors.Is(err, series.ErrEmptySeries), errors.Is(err, series.ErrMissingValue):
			abortError(c, http.StatusBadRequest, "INVALID_SERIES", err.Error())
		default:
			s.log.Errorf("dispatch run: %v", err)
			abortError(c, http.StatusInternalServerError, "DISPATCH_FAILED", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, out)
}

// Recovery handles POST /api/v1/recovery. An empty body uses the configured
// recovery system; fields present in the body replace it.
func (s *Server) Recovery(c *gin.Context) {
	rc := s.svc.Config().Recovery
	if c.Request.ContentLength != 0 {
		var req config.RecoveryConfig
		if err := c.ShouldBindJSON(&req); err != nil {
			abortError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		rc = mergeRecovery(rc, req)
	}
	if err := rc.Validate(); err != nil {
		abortError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}
	out, err := s.svc.RecoveryWith(c.Request.Context(), rc)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "RECOVERY_FAILED", err.Error())
		return
	}
	c.JSON(http.StatusOK, out)
}

func mergeRecovery(base, req config.RecoveryConfig) config.RecoveryConfig {
	if req.System.StepCap != 0 {
		base.System.StepCap = req.System.StepCap
	}
	if req.System.BatteryEnergy != 0 {
		base.System.BatteryEnergy = req.System.BatteryEnergy
	}
	if req.System.FuelCellEnergy != 0 {
		base.System.FuelCellEnergy = req.System.FuelCellEnergy
	}
	if req.System.Demand != 0 {
		base.System.Demand = req.System.Demand
	}
	if req.Minutes != 0 {
		base.Minutes = req.Minutes
	}
	if req.Sigmoid.K != 0 || req.Sigmoid.Midpoint != 0 {
		base.Sigmoid = req.Sigmoid
	}
	if req.RuleBased.Delay != 0 || req.RuleBased.PlateauLevel != 0 || req.RuleBased.Slope != 0 {
		base.RuleBased = req.RuleBased
	}
	return base
}

// Runs handles GET /api/v1/runs. Step records are only included with
// records=true.
func (s *Server) Runs(c *gin.Context) {
	q := trace.Query{Variant: c.Query("variant"), ID: c.Query("id")}
	var err error
	if q.Start, err = parseTime(c.Query("start")); err != nil {
		abortError(c, http.StatusBadRequest, "INVALID_QUERY", "start: "+err.Error())
		return
	}
	if q.End, err = parseTime(c.Query("end")); err != nil {
		abortError(c, http.StatusBadRequest, "INVALID_QUERY", "end: "+err.Error())
		return
	}
	withRecords, _ := strconv.ParseBool(c.Query("records"))

	runs, err := s.svc.Store().Query(c.Request.Context(), q)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	if runs == nil {
		runs = []trace.RunRecord{}
	}
	if !withRecords {
		for i := range runs {
			runs[i].Records = nil
		}
	}
	c.JSON(http.StatusOK, runs)
}

// EcoKPI handles GET /api/v1/kpi/eco.
func (s *Server) EcoKPI(c *gin.Context) {
	variant := c.DefaultQuery("variant", dispatch.VariantStandalone)
	start, err := parseTime(c.Query("start"))
	if err != nil {
		abortError(c, http.StatusBadRequest, "INVALID_QUERY", "start: "+err.Error())
		return
	}
	end, err := parseTime(c.Query("end"))
	if err != nil {
		abortError(c, http.StatusBadRequest, "INVALID_QUERY", "end: "+err.Error())
		return
	}
	if end.IsZero() {
		end = time.Now()
	}
	recs, err := s.eco.Query(variant, start, end)
	if errors.Is(err, eco.ErrInvalidRange) {
		abortError(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	if err != nil {
		abortError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	out := make([]KPI, len(recs))
	for i, r := range recs {
		out[i] = KPI{
			Date:            r.Date.Format("2006-01-02"),
			Variant:         r.Variant,
			LocalKWh:        r.LocalKWh(),
			GridKWh:         r.GridKWh,
			CO2Avoided:      r.CO2Avoided(s.factor),
			SelfSufficiency: r.SelfSufficiency(),
		}
	}
	c.JSON(http.StatusOK, out)
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}
