package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"orderchain/internal/adapters/out/ledger/memledger"
	"orderchain/internal/core/application/usecases/commands"
	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/inventory"
	"orderchain/internal/core/domain/model/sync"
	"orderchain/internal/core/domain/services"
	"orderchain/internal/core/ports"
	"orderchain/internal/pkg/envelope"
	"orderchain/internal/pkg/errs"
)

type fakeActorRepository struct {
	actors map[string]*identity.ActorIdentity
}

func newFakeActorRepository() *fakeActorRepository {
	return &fakeActorRepository{actors: make(map[string]*identity.ActorIdentity)}
}

func (r *fakeActorRepository) Add(_ context.Context, actor *identity.ActorIdentity) error {
	if _, ok := r.actors[actor.CompanyCode()]; ok {
		return errs.NewValueIsInvalidError("companyCode is already taken: " + actor.CompanyCode())
	}
	r.actors[actor.CompanyCode()] = actor
	return nil
}

func (r *fakeActorRepository) Get(_ context.Context, companyCode string) (*identity.ActorIdentity, error) {
	actor, ok := r.actors[companyCode]
	if !ok {
		return nil, errs.NewObjectNotFoundError("companyCode", companyCode)
	}
	return actor, nil
}

func (r *fakeActorRepository) Exists(_ context.Context, companyCode string) (bool, error) {
	_, ok := r.actors[companyCode]
	return ok, nil
}

// fakeInventoryRepository mirrors the gorm repository's semantics: every
// read rebuilds the aggregate from the stored row, so callers never alias
// stored state, and adding an already mirrored order is a no-op.
type fakeInventoryRepository struct {
	items  map[string]*inventory.Item
	orders map[string]*inventory.MirrorOrder
}

func newFakeInventoryRepository() *fakeInventoryRepository {
	return &fakeInventoryRepository{
		items:  make(map[string]*inventory.Item),
		orders: make(map[string]*inventory.MirrorOrder),
	}
}

func cloneItem(item *inventory.Item) (*inventory.Item, error) {
	return inventory.RestoreItem(item.SKU(), item.ProductCode(), item.Published(), item.Levels())
}

func cloneMirrorOrder(mirrorOrder *inventory.MirrorOrder) (*inventory.MirrorOrder, error) {
	return inventory.RestoreMirrorOrder(mirrorOrder.OrderID(), mirrorOrder.SellerCode(),
		mirrorOrder.Lines(), mirrorOrder.InventoryReduced(), mirrorOrder.InventoryRestored())
}

func (r *fakeInventoryRepository) GetItem(_ context.Context, sku string) (*inventory.Item, error) {
	item, ok := r.items[sku]
	if !ok {
		return nil, errs.NewObjectNotFoundError("sku", sku)
	}
	return cloneItem(item)
}

func (r *fakeInventoryRepository) UpdateItem(_ context.Context, item *inventory.Item) error {
	copied, err := cloneItem(item)
	if err != nil {
		return err
	}
	r.items[item.SKU()] = copied
	return nil
}

func (r *fakeInventoryRepository) AddOrder(_ context.Context, mirrorOrder *inventory.MirrorOrder) error {
	if _, ok := r.orders[mirrorOrder.OrderID()]; ok {
		return nil
	}
	copied, err := cloneMirrorOrder(mirrorOrder)
	if err != nil {
		return err
	}
	r.orders[mirrorOrder.OrderID()] = copied
	return nil
}

func (r *fakeInventoryRepository) GetOrder(_ context.Context, orderID string) (*inventory.MirrorOrder, error) {
	mirrorOrder, ok := r.orders[orderID]
	if !ok {
		return nil, errs.NewObjectNotFoundError("orderID", orderID)
	}
	return cloneMirrorOrder(mirrorOrder)
}

func (r *fakeInventoryRepository) UpdateOrder(_ context.Context, mirrorOrder *inventory.MirrorOrder) error {
	copied, err := cloneMirrorOrder(mirrorOrder)
	if err != nil {
		return err
	}
	r.orders[mirrorOrder.OrderID()] = copied
	return nil
}

type fakeSyncTaskRepository struct {
	tasks map[string]*sync.Task
	order []string
}

func newFakeSyncTaskRepository() *fakeSyncTaskRepository {
	return &fakeSyncTaskRepository{tasks: make(map[string]*sync.Task)}
}

func cloneTask(task *sync.Task) (*sync.Task, error) {
	return sync.RestoreTask(task.TxID(), task.OrderID(), task.NewStatus(), task.State(),
		task.Attempts(), task.LastError(), task.CreatedAt(), task.UpdatedAt())
}

func (r *fakeSyncTaskRepository) Add(_ context.Context, task *sync.Task) error {
	if _, ok := r.tasks[task.TxID()]; ok {
		return nil
	}
	copied, err := cloneTask(task)
	if err != nil {
		return err
	}
	r.tasks[task.TxID()] = copied
	r.order = append(r.order, task.TxID())
	return nil
}

func (r *fakeSyncTaskRepository) GetAllPending(_ context.Context, limit int) ([]*sync.Task, error) {
	var pending []*sync.Task
	for _, txID := range r.order {
		if len(pending) == limit {
			break
		}
		if r.tasks[txID].State() == sync.Pending {
			copied, err := cloneTask(r.tasks[txID])
			if err != nil {
				return nil, err
			}
			pending = append(pending, copied)
		}
	}
	return pending, nil
}

func (r *fakeSyncTaskRepository) Update(_ context.Context, task *sync.Task) error {
	copied, err := cloneTask(task)
	if err != nil {
		return err
	}
	r.tasks[task.TxID()] = copied
	return nil
}

// fakeUoW satisfies every unit of work interface the handlers need. Begin
// snapshots the backing maps and Rollback restores them, so writes made
// inside a transaction vanish unless the handler commits, the same way the
// gorm unit of work behaves.
type fakeUoW struct {
	actors    *fakeActorRepository
	inv       *fakeInventoryRepository
	syncTasks *fakeSyncTaskRepository

	begins  int
	commits int

	snapshot *fakeUoWSnapshot
}

type fakeUoWSnapshot struct {
	actors    map[string]*identity.ActorIdentity
	items     map[string]*inventory.Item
	orders    map[string]*inventory.MirrorOrder
	tasks     map[string]*sync.Task
	taskOrder []string
}

func newFakeUoW() *fakeUoW {
	return &fakeUoW{
		actors:    newFakeActorRepository(),
		inv:       newFakeInventoryRepository(),
		syncTasks: newFakeSyncTaskRepository(),
	}
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (u *fakeUoW) Begin(_ context.Context) error {
	u.begins++
	u.snapshot = &fakeUoWSnapshot{
		actors:    copyMap(u.actors.actors),
		items:     copyMap(u.inv.items),
		orders:    copyMap(u.inv.orders),
		tasks:     copyMap(u.syncTasks.tasks),
		taskOrder: append([]string(nil), u.syncTasks.order...),
	}
	return nil
}

func (u *fakeUoW) Commit(_ context.Context) error {
	u.commits++
	u.snapshot = nil
	return nil
}

func (u *fakeUoW) Rollback(_ context.Context) error {
	if u.snapshot == nil {
		return nil
	}
	u.actors.actors = u.snapshot.actors
	u.inv.items = u.snapshot.items
	u.inv.orders = u.snapshot.orders
	u.syncTasks.tasks = u.snapshot.tasks
	u.syncTasks.order = u.snapshot.taskOrder
	u.snapshot = nil
	return nil
}

func (u *fakeUoW) ActorRepository() ports.ActorRepository         { return u.actors }
func (u *fakeUoW) InventoryRepository() ports.InventoryRepository { return u.inv }
func (u *fakeUoW) SyncTaskRepository() ports.SyncTaskRepository   { return u.syncTasks }

type fakeUoWFactory struct {
	uow *fakeUoW
}

func (f fakeUoWFactory) Create() commands.SplitUoW { return f.uow }

type fakeActorUoWFactory struct {
	uow *fakeUoW
}

func (f fakeActorUoWFactory) Create() commands.ActorUoW { return f.uow }

type fakeSyncUoWFactory struct {
	uow *fakeUoW
}

func (f fakeSyncUoWFactory) Create() commands.SyncUoW { return f.uow }

type fakeEnroller struct {
	err error
}

func (e fakeEnroller) Enroll(_ context.Context, companyCode string, _ identity.Org) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return "wallet-" + companyCode, nil
}

func approveTestActor(t *testing.T, repo *fakeActorRepository, companyCode string, org identity.Org) *identity.ActorIdentity {
	t.Helper()

	publicKeyPEM, privateKeyPEM, err := envelope.GenerateKeyPair()
	require.NoError(t, err)

	actor, err := identity.NewActorIdentity(companyCode, org, publicKeyPEM, privateKeyPEM, "wallet-"+companyCode)
	require.NoError(t, err)
	require.NoError(t, repo.Add(context.Background(), actor))
	return actor
}

func platformActor(t *testing.T) identity.Actor {
	t.Helper()

	actor, err := identity.NewActor(identity.PlatformOrg, "PLATFORM")
	require.NoError(t, err)
	return actor
}

func newTestLedger(t *testing.T, now func() time.Time) *memledger.Ledger {
	t.Helper()

	contract, err := services.NewOrderContract(7*24*time.Hour, 72*time.Hour)
	require.NoError(t, err)
	return memledger.NewWithClock(contract, now)
}
