package optimize

import (
	"reflect"
	"testing"
)

func pct(v float64) *float64 { return &v }

func oneUse(key string, w, h float64) []AnimationAnalysis {
	return []AnimationAnalysis{{
		Animation: "walk",
		Images:    []ImageUsage{{Key: key, MaxRenderWidth: w, MaxRenderHeight: h}},
	}}
}

func TestCalculate_BasicShrink(t *testing.T) {
	images := []LoadedImage{{Path: "hero.png", Name: "hero.png", Width: 200, Height: 200}}
	tasks, _ := Calculate(oneUse("hero.png", 50, 50), images, 0)

	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.TargetWidth != 50 || task.TargetHeight != 50 {
		t.Errorf("target = %dx%d, want 50x50", task.TargetWidth, task.TargetHeight)
	}
	if !task.Resize {
		t.Error("expected resize flag")
	}
}

func TestCalculate_BufferClampsToOriginal(t *testing.T) {
	images := []LoadedImage{{Path: "hero.png", Name: "hero.png", Width: 200, Height: 200}}

	tasks, _ := Calculate(oneUse("hero.png", 50, 50), images, 100)
	if got := tasks[0]; got.TargetWidth != 100 || got.TargetHeight != 100 || !got.Resize {
		t.Errorf("buffer=100: got %dx%d resize=%v, want 100x100 resize=true",
			got.TargetWidth, got.TargetHeight, got.Resize)
	}

	// With enough buffer the target clamps to the original and no
	// resize happens.
	tasks, _ = Calculate(oneUse("hero.png", 150, 150), images, 100)
	if got := tasks[0]; got.TargetWidth != 200 || got.TargetHeight != 200 || got.Resize {
		t.Errorf("clamped: got %dx%d resize=%v, want 200x200 resize=false",
			got.TargetWidth, got.TargetHeight, got.Resize)
	}
}

func TestCalculate_ToleranceBoundary(t *testing.T) {
	images := []LoadedImage{{Path: "a", Name: "a.png", Width: 100, Height: 100}}

	// original - 2 on the shrink axis: inside tolerance, no resize.
	tasks, _ := Calculate(oneUse("a", 98, 100), images, 0)
	if tasks[0].Resize {
		t.Error("shrink of 2px must not flag resize")
	}

	// original - 3: beyond tolerance, resize.
	tasks, _ = Calculate(oneUse("a", 97, 100), images, 0)
	if !tasks[0].Resize {
		t.Error("shrink of 3px must flag resize")
	}
}

func TestCalculate_UnusedImageExcluded(t *testing.T) {
	images := []LoadedImage{
		{Path: "used", Name: "used.png", Width: 64, Height: 64},
		{Path: "dead", Name: "dead.png", Width: 64, Height: 64},
	}
	for _, buffer := range []float64{0, 10, 100} {
		tasks, _ := Calculate(oneUse("used", 10, 10), images, buffer)
		if len(tasks) != 1 || tasks[0].RelativePath != "used" {
			t.Fatalf("buffer=%g: unreferenced image leaked into tasks: %+v", buffer, tasks)
		}
	}
}

func TestCalculate_OverrideUpscales(t *testing.T) {
	images := []LoadedImage{{Path: "a", Name: "a.png", Width: 100, Height: 100}}
	results := []AnimationAnalysis{{
		Animation: "idle",
		Images: []ImageUsage{{
			Key: "a", MaxRenderWidth: 150, MaxRenderHeight: 150,
			OverridePercent: pct(150),
		}},
	}}

	tasks, _ := Calculate(results, images, 0)
	task := tasks[0]
	if task.TargetWidth != 150 || task.TargetHeight != 150 {
		t.Errorf("override target = %dx%d, want 150x150", task.TargetWidth, task.TargetHeight)
	}
	if !task.Resize {
		t.Error("override larger than original must still flag resize")
	}
}

func TestCalculate_OverrideEqualDimensionsNoOp(t *testing.T) {
	images := []LoadedImage{{Path: "a", Name: "a.png", Width: 100, Height: 100}}
	results := []AnimationAnalysis{{
		Animation: "idle",
		Images: []ImageUsage{{
			Key: "a", MaxRenderWidth: 100, MaxRenderHeight: 100,
			OverridePercent: pct(100),
		}},
	}}

	tasks, _ := Calculate(results, images, 0)
	if tasks[0].Resize {
		t.Error("override target equal to original must not flag resize")
	}
}

func TestCalculate_AggregatesMaximumAcrossAnimations(t *testing.T) {
	images := []LoadedImage{{Path: "a", Name: "a.png", Width: 400, Height: 400}}
	results := []AnimationAnalysis{
		{Animation: "walk", Images: []ImageUsage{{Key: "a", MaxRenderWidth: 50, MaxRenderHeight: 120, MaxScaleX: 0.5}}},
		{Animation: "run", Images: []ImageUsage{{Key: "a", MaxRenderWidth: 90, MaxRenderHeight: 40, MaxScaleY: 1.4}}},
	}

	tasks, _ := Calculate(results, images, 0)
	task := tasks[0]
	if task.TargetWidth != 90 || task.TargetHeight != 120 {
		t.Errorf("target = %dx%d, want 90x120", task.TargetWidth, task.TargetHeight)
	}
	if task.MaxScale != 1.4 {
		t.Errorf("maxScale = %g, want 1.4", task.MaxScale)
	}
}

func TestCalculate_OverrideLastWriterWinsWithWarning(t *testing.T) {
	images := []LoadedImage{{Path: "a", Name: "a.png", Width: 100, Height: 100}}
	results := []AnimationAnalysis{
		{Animation: "walk", Images: []ImageUsage{{Key: "a", MaxRenderWidth: 50, MaxRenderHeight: 50, OverridePercent: pct(50)}}},
		{Animation: "run", Images: []ImageUsage{{Key: "a", MaxRenderWidth: 50, MaxRenderHeight: 50, OverridePercent: pct(75)}}},
	}

	tasks, warnings := Calculate(results, images, 0)
	if got := tasks[0].OverridePercent; got == nil || *got != 75 {
		t.Fatalf("expected last override 75, got %v", got)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 conflict warning, got %v", warnings)
	}
}

func TestCalculate_ResizeTasksFirst(t *testing.T) {
	images := []LoadedImage{
		{Path: "keep1", Name: "keep1.png", Width: 10, Height: 10},
		{Path: "shrink1", Name: "shrink1.png", Width: 100, Height: 100},
		{Path: "keep2", Name: "keep2.png", Width: 10, Height: 10},
		{Path: "shrink2", Name: "shrink2.png", Width: 100, Height: 100},
	}
	results := []AnimationAnalysis{{Animation: "a", Images: []ImageUsage{
		{Key: "keep1", MaxRenderWidth: 10, MaxRenderHeight: 10},
		{Key: "shrink1", MaxRenderWidth: 20, MaxRenderHeight: 20},
		{Key: "keep2", MaxRenderWidth: 10, MaxRenderHeight: 10},
		{Key: "shrink2", MaxRenderWidth: 30, MaxRenderHeight: 30},
	}}}

	tasks, _ := Calculate(results, images, 0)
	var got []string
	for _, task := range tasks {
		got = append(got, task.RelativePath)
	}
	// Resize partition first, insertion order within each partition.
	want := []string{"shrink1", "shrink2", "keep1", "keep2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	seenPlain := false
	for _, task := range tasks {
		if !task.Resize {
			seenPlain = true
		} else if seenPlain {
			t.Fatal("resize task after non-resize task")
		}
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	images := []LoadedImage{
		{Path: "a", Name: "a.png", Width: 200, Height: 100, Data: []byte{1, 2}},
		{Path: "b", Name: "b.png", Width: 30, Height: 30},
	}
	results := []AnimationAnalysis{
		{Animation: "walk", Images: []ImageUsage{
			{Key: "a", MaxRenderWidth: 51.2, MaxRenderHeight: 40.7, MaxScaleX: 0.4},
			{Key: "b", MaxRenderWidth: 30, MaxRenderHeight: 30},
		}},
	}

	first, _ := Calculate(results, images, 15)
	second, _ := Calculate(results, images, 15)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("calculator is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestCalculate_Empty(t *testing.T) {
	if tasks, _ := Calculate(nil, nil, 0); len(tasks) != 0 {
		t.Fatalf("empty inputs produced tasks: %+v", tasks)
	}
}
