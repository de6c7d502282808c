package wizard

type Flow string

const (
	FlowMenu              Flow = "menu"
	FlowAddItem           Flow = "add_item"
	FlowChangeItem        Flow = "change_item"
	FlowDeleteCategory    Flow = "delete_category"
	FlowRenameCategory    Flow = "rename_category"
	FlowDeleteSubcategory Flow = "delete_subcategory"
	FlowRenameSubcategory Flow = "rename_subcategory"
)

type State string

const (
	StateDone State = "" // session closed

	StateMenu State = "menu"

	StateAddID               State = "add.id"
	StateAddCategory         State = "add.category"
	StateAddSubcategory      State = "add.subcategory"
	StateAddName             State = "add.name"
	StateAddPhotos           State = "add.photos"
	StateAddPrice            State = "add.price"
	StateAddDescription      State = "add.description"
	StateAddShortDescription State = "add.short_description"
	StateAddStock            State = "add.stock"
	StateAddVisible          State = "add.visible"
	StateAddQuickView        State = "add.quick_view"

	StateChangeCategory    State = "change.category"
	StateChangeSubcategory State = "change.subcategory"
	StateChangeItem        State = "change.item"
	StateChangeField       State = "change.field"
	StateChangeValue       State = "change.value"
	StateChangeDelete      State = "change.delete"

	StateDelCatCategory State = "delete_category.category"
	StateDelCatConfirm  State = "delete_category.confirm"

	StateRenCatCategory State = "rename_category.category"
	StateRenCatName     State = "rename_category.name"

	StateDelSubCategory    State = "delete_subcategory.category"
	StateDelSubSubcategory State = "delete_subcategory.subcategory"
	StateDelSubConfirm     State = "delete_subcategory.confirm"

	StateRenSubCategory    State = "rename_subcategory.category"
	StateRenSubSubcategory State = "rename_subcategory.subcategory"
	StateRenSubName        State = "rename_subcategory.name"
)

// validNext lists the forward moves of every flow. Closing a session
// (StateDone) is allowed from any state and is not listed.
var validNext = map[State]map[State]bool{
	StateMenu: {
		StateAddID: true, StateChangeCategory: true,
		StateDelCatCategory: true, StateRenCatCategory: true,
		StateDelSubCategory: true, StateRenSubCategory: true,
	},

	StateAddID:               {StateAddCategory: true},
	StateAddCategory:         {StateAddSubcategory: true, StateAddName: true},
	StateAddSubcategory:      {StateAddName: true},
	StateAddName:             {StateAddPhotos: true},
	StateAddPhotos:           {StateAddPrice: true},
	StateAddPrice:            {StateAddDescription: true},
	StateAddDescription:      {StateAddShortDescription: true},
	StateAddShortDescription: {StateAddStock: true},
	StateAddStock:            {StateAddVisible: true},
	StateAddVisible:          {StateAddQuickView: true},
	StateAddQuickView:        {},

	StateChangeCategory:    {StateChangeSubcategory: true, StateChangeItem: true},
	StateChangeSubcategory: {StateChangeItem: true},
	StateChangeItem:        {StateChangeField: true},
	StateChangeField:       {StateChangeValue: true, StateChangeDelete: true},
	StateChangeValue:       {},
	StateChangeDelete:      {StateChangeField: true},

	StateDelCatCategory: {StateDelCatConfirm: true},
	StateDelCatConfirm:  {},

	StateRenCatCategory: {StateRenCatName: true},
	StateRenCatName:     {},

	StateDelSubCategory:    {StateDelSubSubcategory: true},
	StateDelSubSubcategory: {StateDelSubConfirm: true},
	StateDelSubConfirm:     {},

	StateRenSubCategory:    {StateRenSubSubcategory: true},
	StateRenSubSubcategory: {StateRenSubName: true},
	StateRenSubName:        {},
}

func CanTransition(from, to State) bool {
	if to == StateDone {
		return true
	}
	return validNext[from][to]
}

// flowOf maps the first state of a flow back to the flow.
var flowOf = map[State]Flow{
	StateAddID:          FlowAddItem,
	StateChangeCategory: FlowChangeItem,
	StateDelCatCategory: FlowDeleteCategory,
	StateRenCatCategory: FlowRenameCategory,
	StateDelSubCategory: FlowDeleteSubcategory,
	StateRenSubCategory: FlowRenameSubcategory,
}
