package storage

import "testing"

func TestStoreAchievements(t *testing.T) {
	store := openTestStore(t)

	fresh, err := store.UnlockAchievement("first_clear")
	if err != nil {
		t.Fatalf("UnlockAchievement() failed: %v", err)
	}
	if !fresh {
		t.Error("First unlock should report true")
	}

	fresh, err = store.UnlockAchievement("first_clear")
	if err != nil {
		t.Fatalf("UnlockAchievement() failed: %v", err)
	}
	if fresh {
		t.Error("Second unlock should report false")
	}

	list, err := store.Achievements()
	if err != nil {
		t.Fatalf("Achievements() failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "first_clear" {
		t.Errorf("Unexpected achievements: %+v", list)
	}
}
