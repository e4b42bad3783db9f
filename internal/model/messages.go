package model

// Reason and validation messages shown to callers, keyed by language. The
// planner serves French and English operators; unknown languages fall back to
// English.

const (
	MsgDropped             = "WAS_SCHEDULED_BUT_DROPPED"
	MsgOutsidePeriod       = "OUTSIDE_OPTIMISATION_PERIOD"
	MsgNoSkillMatch        = "NO_SKILL_MATCH"
	MsgBadTimeConstraint   = "TIME_CONSTRAINT_INCORRECT"
	MsgLargeWorkDuration   = "LARGE_WORK_DURATION"
	MsgSparePartConflict   = "SPARE_PART_AVAILABILITY"
	MsgUnsupportedTimeUnit = "unsupported_time_unit"
	MsgNoMatrixDefined     = "neither_time_matrix_nor_distance_matrix_defined"
	MsgPreprocessing       = "preprocessing_request"
	MsgOptimizingSkill     = "optimizing_for_skill"
	MsgStarted             = "optimization_has_started"
	MsgFinished            = "optimization_has_finished"
)

var messagesEN = map[string]string{
	MsgDropped:             "Was scheduled but dropped. Did not fit in planning.",
	MsgOutsidePeriod:       "Was outside optimisation period. Was never scheduled.",
	MsgNoSkillMatch:        "Was not scheduled because no %s skill match.",
	MsgBadTimeConstraint:   "Incorrect time constraint, start time is after end time.",
	MsgLargeWorkDuration:   "Work duration is larger than available time span.",
	MsgSparePartConflict:   "Spare part availability is after the must start date.",
	MsgUnsupportedTimeUnit: "Unsupported time unit: %s",
	MsgNoMatrixDefined:     "Neither time matrix nor distance matrix defined.",
	MsgPreprocessing:       "preprocessing request",
	MsgOptimizingSkill:     "optimizing for skill %s",
	MsgStarted:             "optimization has started",
	MsgFinished:            "optimization has finished",
}

var messagesFR = map[string]string{
	MsgDropped:             "Était programmé mais abandonné. Ne correspondait pas au planning.",
	MsgOutsidePeriod:       "Était en dehors de la période d'optimisation. N'a jamais été programmé.",
	MsgNoSkillMatch:        "N'a pas été programmé car aucune correspondance de compétence %s.",
	MsgBadTimeConstraint:   "Contrainte temporelle incorrecte, l'heure de début est après l'heure de fin.",
	MsgLargeWorkDuration:   "La durée du travail est supérieure à la plage horaire disponible.",
	MsgSparePartConflict:   "La pièce de rechange n'est disponible qu'après la date de début obligatoire.",
	MsgUnsupportedTimeUnit: "Unité de temps non prise en charge: %s",
	MsgNoMatrixDefined:     "Ni 'time_matrix' ni 'distance_matrix' ne sont définis.",
	MsgPreprocessing:       "requête de prétraitement",
	MsgOptimizingSkill:     "optimisation pour la compétence %s",
	MsgStarted:             "l'optimisation a commencé",
	MsgFinished:            "l'optimisation a fini",
}

// Translate resolves a message key for the given language. Unknown keys are
// returned as-is so ad hoc strings pass through unchanged.
func Translate(key, language string) string {
	catalog := messagesEN
	if language == "fr" {
		catalog = messagesFR
	}
	if msg, ok := catalog[key]; ok {
		return msg
	}
	return key
}
