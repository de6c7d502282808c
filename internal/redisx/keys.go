package redisx

import "time"

const (
	// Wizard session admin: wizard:session:{admin_id} -> JSON session
	KeyWizardSession = "wizard:session:%d"

	// Dedup proses: dedup:{service}:{id} (id = charge id atau event_id)
	KeyDedup = "dedup:%s:%s"

	// Job scheduler: zset schedule:{queue}, member = job id, score = fire time (unix ms)
	KeySchedule = "schedule:%s"
)

var (
	// hanya untuk membersihkan sesi yang ditinggal, bukan timeout fungsional
	TTLWizardSession = 7 * 24 * time.Hour
	TTLDedup         = 48 * time.Hour
)
