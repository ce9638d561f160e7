package kernel_test

import (
	"testing"

	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/kernel/contracttest"
)

func TestCallContextSatisfiesDefaultBudgetContract(t *testing.T) {
	contracttest.CallContextDefaultBudgetContract(t)
}

func TestCallContextSatisfiesExecutionViewContract(t *testing.T) {
	call := kernel.NewBuilder().AddBudget(kernel.NewBudget(kernel.BudgetDecode, 8)).Build()

	contracttest.CallContextExecutionViewContract(t, call)
}
