package models

import "time"

// EditAction classifies structural mutations recorded in the edit history.
type EditAction string

const (
	EditActionCreate        EditAction = "CREATE"
	EditActionUpdateInfo    EditAction = "UPDATE_INFO"
	EditActionAddPage       EditAction = "ADD_PAGE"
	EditActionRemovePage    EditAction = "REMOVE_PAGE"
	EditActionAddProduct    EditAction = "ADD_PRODUCT"
	EditActionRemoveProduct EditAction = "REMOVE_PRODUCT"
	EditActionReorder       EditAction = "REORDER"
	EditActionSyncPages     EditAction = "SYNC_PAGES"
	EditActionSubmit        EditAction = "SUBMIT"
	EditActionExpire        EditAction = "EXPIRE"
)

// EditHistory is one append-only log entry for a flyer mutation.
type EditHistory struct {
	ID         string     `db:"id" json:"id"`
	FlyerID    string     `db:"flyer_id" json:"flyerId"`
	ActorID    string     `db:"actor_id" json:"actorId"`
	ActionType EditAction `db:"action_type" json:"actionType"`
	Details    []byte     `db:"details" json:"details,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}
