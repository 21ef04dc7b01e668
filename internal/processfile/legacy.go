package processfile

// Tags and option values written by the original desktop tool.
var (
	legacyKinds = map[string]string{
		"阀门控制": "valve",
		"泵控制":  "pump",
		"延时":   "delay",
		"电机控制": "motor",
		"电机等待": "motor_wait",
		"循环":   "loop",
		"复合动作": "composite",
	}
	legacyActions = map[string]string{
		"开": "open",
		"关": "close",
	}
	legacyModes = map[string]string{
		"同步": "sync",
		"异步": "async",
	}
	legacyCommands = map[string]string{
		"复位":   "reset",
		"步进移动": "move_step",
		"速度移动": "move_speed",
		"停止":   "stop",
	}
)

// normalizeLegacy rewrites legacy step tags and option values in a generic
// document in place. It reports whether anything was rewritten.
func normalizeLegacy(doc any) bool {
	root, ok := doc.(map[string]any)
	if !ok {
		return false
	}
	return normalizeSteps(root["steps"])
}

func normalizeSteps(v any) bool {
	steps, ok := v.([]any)
	if !ok {
		return false
	}
	changed := false
	for _, s := range steps {
		step, ok := s.(map[string]any)
		if !ok {
			continue
		}
		for field, table := range map[string]map[string]string{
			"type":    legacyKinds,
			"action":  legacyActions,
			"mode":    legacyModes,
			"command": legacyCommands,
		} {
			if replaceString(step, field, table) {
				changed = true
			}
		}
		if normalizeSteps(step["steps"]) {
			changed = true
		}
	}
	return changed
}

func replaceString(m map[string]any, field string, table map[string]string) bool {
	s, ok := m[field].(string)
	if !ok {
		return false
	}
	if to, ok := table[s]; ok {
		m[field] = to
		return true
	}
	return false
}
