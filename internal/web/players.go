package web

import (
	"net/http"

	"tithe/internal/back"

	"github.com/go-chi/chi"
)

func (s *Server) getPlayers(w http.ResponseWriter, _ *http.Request) {
	statuses, err := s.back.GetDashboard()
	if err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	players := make([]map[string]interface{}, 0, len(statuses))
	for k := range statuses {
		players = append(players, playerJSON(&statuses[k]))
	}

	s.response(w, http.StatusOK, map[string]interface{}{
		"players": players,
	})
}

func (s *Server) getPlayerPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.back.PaymentHistory(chi.URLParam(r, "id"), 50)
	if err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	ret := make([]map[string]interface{}, 0, len(payments))
	for _, v := range payments {
		entry := map[string]interface{}{
			"id":         v.ID,
			"player_id":  v.PlayerID,
			"payer_name": v.PayerName,
			"amount":     v.Amount,
			"admin_name": v.AdminName,
			"created_at": v.CreatedAt.Time(),
		}
		if v.Proof.Valid {
			entry["proof"] = v.Proof.String
		}

		ret = append(ret, entry)
	}

	s.response(w, http.StatusOK, map[string]interface{}{
		"payments": ret,
	})
}

func (s *Server) getDashboard(w http.ResponseWriter, _ *http.Request) {
	report, err := s.back.GetUnpaidReport()
	if err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	unpaid := make([]map[string]interface{}, 0, len(report.Unpaid))
	for k := range report.Unpaid {
		unpaid = append(unpaid, playerJSON(&report.Unpaid[k]))
	}

	s.response(w, http.StatusOK, map[string]interface{}{
		"period":          report.Period,
		"total_collected": report.TotalCollected,
		"all_paid":        report.AllPaid(),
		"unpaid":          unpaid,
	})
}

func playerJSON(status *back.PlayerStatus) map[string]interface{} {
	ret := map[string]interface{}{
		"id":        status.Player.ID,
		"name":      status.Player.Name,
		"level":     status.Player.Level,
		"factories": status.Player.Factories,
		"due":       status.Due,
		"paid":      status.Paid,
	}

	if status.Player.LastPaidPeriod.Valid {
		ret["last_paid_period"] = status.Player.LastPaidPeriod.String
		ret["last_paid_amount"] = status.Player.LastPaidAmount.Float64
	}

	return ret
}
