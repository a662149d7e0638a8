package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Victor-armando18/service-tax-transition/internal/domain"
	"github.com/Victor-armando18/service-tax-transition/internal/interfaces"
	"github.com/diegoholiveira/jsonlogic/v3"
)

type JsonLogicExecutor struct{}

var _ interfaces.RuleExecutor = (*JsonLogicExecutor)(nil)

func NewJsonLogicExecutor() *JsonLogicExecutor {
	return &JsonLogicExecutor{}
}

// Execute avalia a regra contra contextVars. Um resultado "null" vira nil.
func (j *JsonLogicExecutor) Execute(ctx context.Context, ruleData map[string]interface{}, contextVars map[string]interface{}) (interface{}, error) {
	ruleJSON, err := json.Marshal(ruleData)
	if err != nil {
		return nil, fmt.Errorf("%w: encode rule: %v", domain.ErrRuleExecutionFailed, err)
	}
	dataJSON, err := json.Marshal(contextVars)
	if err != nil {
		return nil, fmt.Errorf("%w: encode data: %v", domain.ErrRuleExecutionFailed, err)
	}

	var resultBuffer bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(ruleJSON), bytes.NewReader(dataJSON), &resultBuffer); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRuleExecutionFailed, err)
	}

	out := bytes.TrimSpace(resultBuffer.Bytes())
	if len(out) == 0 || string(out) == "null" {
		return nil, nil
	}

	var res interface{}
	dec := json.NewDecoder(bytes.NewReader(out))
	dec.UseNumber()
	if err := dec.Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: decode result: %v", domain.ErrRuleExecutionFailed, err)
	}
	return finalizeValue(res), nil
}

func finalizeValue(val interface{}) interface{} {
	if n, ok := val.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return val
}
