package framework

import (
	"context"
	"fmt"
)

// Step 处理链中的一步
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// StepError 记录失败的步骤，Unwrap 保留原始错误（errorutil 分类依赖它）
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Chain 顺序执行的处理链
type Chain struct {
	steps []Step
}

// NewChain 创建处理链
func NewChain(steps ...Step) *Chain {
	return &Chain{steps: steps}
}

// Run 依次执行，任一步出错或 ctx 结束即停止
func (c *Chain) Run(ctx context.Context) error {
	for _, step := range c.steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: step.Name, Err: err}
		}
		if err := step.Run(ctx); err != nil {
			return &StepError{Step: step.Name, Err: err}
		}
	}
	return nil
}
