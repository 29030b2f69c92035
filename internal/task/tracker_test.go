package task

import "testing"

func TestTracker_Overall(t *testing.T) {
	tracker := NewTracker()

	if tracker.Overall() != 0 {
		t.Errorf("Expected 0 for empty tracker, got %f", tracker.Overall())
	}

	tracker.Track("a")
	tracker.Track("b")
	tracker.Update("a", 50)
	tracker.Update("b", 100)

	if overall := tracker.Overall(); overall != 75 {
		t.Errorf("Expected overall 75, got %f", overall)
	}

	tracker.Forget("b")
	if overall := tracker.Overall(); overall != 50 {
		t.Errorf("Expected overall 50 after forgetting, got %f", overall)
	}
}

func TestTracker_UpdateUnknownKey(t *testing.T) {
	tracker := NewTracker()
	tracker.Update("ghost", 80)

	if tracker.Overall() != 0 {
		t.Errorf("Expected unknown key to be ignored, got %f", tracker.Overall())
	}
}
