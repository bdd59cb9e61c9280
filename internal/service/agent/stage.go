package agent

type Stage string

const (
	StageStart            Stage = "start"
	StagePlanAndSearch    Stage = "plan_and_search"
	StageExecuteSearch    Stage = "execute_search"
	StageCheckResults     Stage = "check_results"
	StageExecuteRecommend Stage = "execute_recommend"
	StageFormat           Stage = "format"
	StageEnd              Stage = "end"
)

var transitions = map[Stage][]Stage{
	StageStart:            {StagePlanAndSearch},
	StagePlanAndSearch:    {StageExecuteSearch, StageCheckResults},
	StageExecuteSearch:    {StageCheckResults},
	StageCheckResults:     {StageExecuteRecommend, StageFormat},
	StageExecuteRecommend: {StageFormat},
	StageFormat:           {StageEnd},
}

func (s Stage) CanTransition(to Stage) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
