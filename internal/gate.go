package internal

// CanRun decides whether an experiment may be dispatched. It is evaluated
// on demand and never cached.
func CanRun(artifact *Artifact, task TaskType, cfg Configuration, inFlight bool) bool {
	return missingForRun(artifact, task, cfg) == nil && !inFlight
}

// missingForRun lists what keeps the gate closed, ignoring the in-flight flag.
func missingForRun(artifact *Artifact, task TaskType, cfg Configuration) []string {
	var missing []string
	if artifact == nil || artifact.Kind != ArtifactTabular {
		missing = append(missing, "dataset")
	}
	for _, key := range task.RequiredFields() {
		if !cfg.Has(key) {
			missing = append(missing, string(key))
		}
	}
	return missing
}
