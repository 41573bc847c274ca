package project_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/behave/pkg/canvas"
	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/project"
)

func Example() {
	ctx := context.Background()
	p := project.New("game")

	level, _ := p.CreateContainer("Level")
	enemy, _ := p.CreateContainer("Enemy")
	lv, _, _ := p.OpenContainer(ctx, level.ID())
	ev, _, _ := p.OpenContainer(ctx, enemy.ID())

	// Level instances Enemy, so Enemy may not instance Level.
	_, err := lv.AddNode(canvas.NodeSpec{Variant: canvas.Instance{ContainerID: enemy.ID()}})
	fmt.Println("Enemy in Level:", err)
	_, err = ev.AddNode(canvas.NodeSpec{Variant: canvas.Instance{ContainerID: level.ID()}})
	fmt.Println("Level in Enemy:", errors.GetCode(err))
	// Output:
	// Enemy in Level: <nil>
	// Level in Enemy: CYCLIC_DEPENDENCY
}
