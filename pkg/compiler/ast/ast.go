// Package ast defines the syntax tree for Pulse components.
//
// Every node carries a 1-based source Position for diagnostics. Nodes own
// their children exclusively: the tree is strict, with no sharing and no
// cycles. Node kinds are closed sets — the code generator switches over the
// concrete types exhaustively and treats an unknown type as an internal
// error rather than a silent no-op.
package ast

// Position is a 1-based line/column pair in the original source file.
type Position struct {
	Line   int
	Column int
}

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() Position
}

type Base struct {
	Position Position
}

func (b Base) Pos() Position { return b.Position }

// At builds the embedded position record for a node.
func At(line, col int) Base { return Base{Position: Position{Line: line, Column: col}} }

// ---------------------------------------------------------------------------
// Program and top-level blocks

// Program is the root of a parsed component. Each named block appears at
// most once; the block parser raises a duplicate-block error otherwise.
type Program struct {
	Base
	Page    *PageBlock
	Route   *RouteBlock
	Imports []*ImportDecl
	Props   *PropsBlock
	State   *StateBlock
	View    *ViewBlock
	Actions *ActionsBlock
	Router  *RouterBlock
	Store   *StoreBlock
	Style   *StyleBlock
}

// Entry is a `name: expr` pair inside page, props, state and store blocks.
type Entry struct {
	Base
	Name  string
	Value Expr
}

// PageBlock holds page metadata such as title and description.
type PageBlock struct {
	Base
	Entries []*Entry
}

// RouteBlock declares the component's route path.
type RouteBlock struct {
	Base
	Path string
}

// ImportDecl is `import Name from "./path"`. From may be empty for bare
// imports resolved by the host bundler.
type ImportDecl struct {
	Base
	Name string
	From string
}

// PropsBlock declares component inputs with default-value expressions.
type PropsBlock struct {
	Base
	Entries []*Entry
}

// StateBlock declares reactive state with initial-value expressions.
type StateBlock struct {
	Base
	Entries []*Entry
}

// ViewBlock is the component's render tree.
type ViewBlock struct {
	Base
	Children []ViewNode
}

// ActionsBlock holds the component's named functions.
type ActionsBlock struct {
	Base
	Actions []*Action
}

// Action is a named function: a component action, a store action or getter,
// or a router guard. Server actions carry the `server` modifier and must be
// async (enforced by the validator, not the parser).
type Action struct {
	Base
	Name   string
	Async  bool
	Server bool
	Params []*Param
	Body   []Stmt
}

// Param is a function parameter, possibly a rest parameter, possibly with a
// default-value expression.
type Param struct {
	Base
	Name    string
	Rest    bool
	Default Expr
}

// RouterBlock is the router mini-grammar: a routes table, guard hooks and
// scalar options.
type RouterBlock struct {
	Base
	Routes   []*RouteEntry
	Guards   []*Action
	Mode     *Entry // mode: "history" | "hash"
	Fallback *Entry // fallback: ComponentName
}

// RouteEntry maps a path to a component name inside `routes { ... }`.
type RouteEntry struct {
	Base
	Path      string
	Component string
}

// StoreBlock is the store mini-grammar: state, getters, actions, and the
// persist / storageKey / plugins options.
type StoreBlock struct {
	Base
	State      []*Entry
	Getters    []*Action
	Actions    []*Action
	Persist    *Entry
	StorageKey *Entry
	Plugins    *Entry
}

// ---------------------------------------------------------------------------
// Expressions

// Expr is implemented by all expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Literal is a number, string, boolean, or null/undefined literal. Value
// holds the decoded Go value; Raw preserves the original spelling so the
// code generator can reproduce it byte-for-byte.
type Literal struct {
	Base
	Value interface{}
	Raw   string
}

// Identifier is a bare name reference.
type Identifier struct {
	Base
	Name string
}

// TemplatePart is one piece of a template literal: either literal Text or an
// interpolated expression (exactly one of the two is set).
type TemplatePart struct {
	Text string
	Expr Expr
}

// TemplateLit is a backtick template literal with ${} interpolations.
type TemplateLit struct {
	Base
	Parts []TemplatePart
}

// ArrayLit is an array literal; elements may include SpreadExpr.
type ArrayLit struct {
	Base
	Elements []Expr
}

// ObjectProp is one property of an object literal. Shorthand `{ name }`
// keeps Value as an Identifier of the same name. Spread `{ ...x }` sets
// Spread and leaves Key empty.
type ObjectProp struct {
	Base
	Key       string
	Value     Expr
	Shorthand bool
	Spread    bool
}

// ObjectLit is an object literal.
type ObjectLit struct {
	Base
	Properties []*ObjectProp
}

// UnaryExpr is a prefix operator application: !, -, !! (double negation is
// kept as nested UnaryExpr nodes), await.
type UnaryExpr struct {
	Base
	Op      string
	Operand Expr
}

// UpdateExpr is a postfix increment or decrement.
type UpdateExpr struct {
	Base
	Op      string // "++" or "--"
	Operand Expr
}

// BinaryExpr covers arithmetic, comparison and equality operators.
type BinaryExpr struct {
	Base
	Op    string
	Left  Expr
	Right Expr
}

// LogicalExpr covers &&, || and ??.
type LogicalExpr struct {
	Base
	Op    string
	Left  Expr
	Right Expr
}

// AssignmentExpr covers = and all compound assignment operators.
type AssignmentExpr struct {
	Base
	Op     string
	Target Expr
	Value  Expr
}

// ConditionalExpr is the ternary operator.
type ConditionalExpr struct {
	Base
	Test       Expr
	Consequent Expr
	Alternate  Expr
}

// ArrowFunction is `(a, b = 1, ...rest) => expr` or `x => { ... }`. Exactly
// one of Body and BlockBody is set.
type ArrowFunction struct {
	Base
	Params    []*Param
	Body      Expr
	BlockBody []Stmt
}

// CallExpr is a function or method invocation.
type CallExpr struct {
	Base
	Callee Expr
	Args   []Expr
}

// MemberExpr is property access: `a.b` (Property) or `a[b]` (Index,
// Computed true).
type MemberExpr struct {
	Base
	Object   Expr
	Property string
	Index    Expr
	Computed bool
}

// SpreadExpr is `...expr` inside array/object literals and argument lists.
type SpreadExpr struct {
	Base
	Arg Expr
}

// SequenceExpr is a comma-separated expression list inside parentheses.
type SequenceExpr struct {
	Base
	Exprs []Expr
}

func (*Literal) exprNode()         {}
func (*Identifier) exprNode()      {}
func (*TemplateLit) exprNode()     {}
func (*ArrayLit) exprNode()        {}
func (*ObjectLit) exprNode()       {}
func (*UnaryExpr) exprNode()       {}
func (*UpdateExpr) exprNode()      {}
func (*BinaryExpr) exprNode()      {}
func (*LogicalExpr) exprNode()     {}
func (*AssignmentExpr) exprNode()  {}
func (*ConditionalExpr) exprNode() {}
func (*ArrowFunction) exprNode()   {}
func (*CallExpr) exprNode()        {}
func (*MemberExpr) exprNode()      {}
func (*SpreadExpr) exprNode()      {}
func (*SequenceExpr) exprNode()    {}

// ---------------------------------------------------------------------------
// Statements (action bodies and arrow block bodies)

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ExprStmt is a bare expression in statement position.
type ExprStmt struct {
	Base
	Expr Expr
}

// LetStmt is a `let` or `const` declaration.
type LetStmt struct {
	Base
	Const bool
	Name  string
	Value Expr
}

// ReturnStmt returns from an action; Value may be nil.
type ReturnStmt struct {
	Base
	Value Expr
}

func (*ExprStmt) stmtNode()   {}
func (*LetStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode() {}

// ---------------------------------------------------------------------------
// View nodes

// ViewNode is implemented by everything that can appear in a view tree.
type ViewNode interface {
	Node
	viewNode()
}

// Attribute is a `name=value` pair on an element, a component prop, or an
// argument of @a11y/@focusTrap. A nil Value means boolean true.
type Attribute struct {
	Base
	Name  string
	Value Expr
}

// Element is a DOM element written with a CSS-selector-like head:
// `div.card#main`. Children and TextContent are mutually exclusive.
type Element struct {
	Base
	Tag         string
	Classes     []string
	ID          string
	Attributes  []*Attribute
	Directives  []Directive
	Children    []ViewNode
	TextContent *Text
}

// Component is an invocation of an imported component.
type Component struct {
	Base
	Name  string
	Props []*Attribute
}

// SlotElement is a content slot; Name defaults to "default".
type SlotElement struct {
	Base
	Name     string
	Fallback []ViewNode
}

// TextPart is one piece of view text: a literal run or an interpolated
// expression (exactly one is set).
type TextPart struct {
	Text string
	Expr Expr
}

// Text is view text with `{expr}` interpolations split into ordered parts.
type Text struct {
	Base
	Parts []TextPart
}

// ---------------------------------------------------------------------------
// Directives

// Directive is the closed set of @-constructs in the view grammar. Standalone
// directives (@if, @for, @link, @outlet, @client, @server) are view nodes in
// their own right; the rest attach to an element.
type Directive interface {
	ViewNode
	directiveNode()
}

// ElseIfBranch is one `@else-if (cond) { ... }` arm of an IfDirective.
type ElseIfBranch struct {
	Base
	Cond Expr
	Body []ViewNode
}

// IfDirective is conditional rendering. Both the hyphenated `@else-if` form
// and the two-token `@else @if` form populate ElseIfBranches identically.
// HasElse distinguishes a written `@else { }` with an empty body from no
// `@else` at all; Alternate is nil in both cases.
type IfDirective struct {
	Base
	Cond           Expr
	Consequent     []ViewNode
	ElseIfBranches []*ElseIfBranch
	HasElse        bool
	Alternate      []ViewNode
}

// EachDirective is keyed iteration: `@for (item of items) key(item.id) {}`.
// KeyExpr is nil when key() is omitted, in which case the list renderer
// falls back to positional identity.
type EachDirective struct {
	Base
	ItemName string
	Op       string // "in" or "of"
	Source   Expr
	KeyExpr  Expr
	Body     []ViewNode
}

// EventDirective binds a DOM event: `@click.prevent(save())`.
type EventDirective struct {
	Base
	Event     string
	Modifiers []string
	Handler   Expr
}

// ModelDirective is two-way binding: `@model.number(count)`.
type ModelDirective struct {
	Base
	Modifiers []string
	Target    Expr
}

// A11yDirective sets accessibility attributes: `@a11y(role="nav", ...)`.
type A11yDirective struct {
	Base
	Attrs []*Attribute
}

// LiveDirective marks a live region; Politeness is "", "polite" or
// "assertive".
type LiveDirective struct {
	Base
	Politeness string
}

// FocusTrapDirective traps keyboard focus within the element.
type FocusTrapDirective struct {
	Base
	Options []*Attribute
}

// SrOnlyDirective hides the element visually but keeps it for screen
// readers.
type SrOnlyDirective struct {
	Base
}

// ClientDirective gates rendering to the client.
type ClientDirective struct {
	Base
	Children []ViewNode
}

// ServerDirective gates rendering to the server.
type ServerDirective struct {
	Base
	Children []ViewNode
}

// LinkDirective renders a navigation link: `@link("/about") "About"`.
type LinkDirective struct {
	Base
	Path    Expr
	Options Expr
	Content []ViewNode
}

// OutletDirective marks where routed components render.
type OutletDirective struct {
	Base
	Selector string
}

// NavigateDirective navigates on activation: `@navigate("/home")`.
type NavigateDirective struct {
	Base
	Path    Expr
	Options Expr
}

// BackDirective navigates one history entry back.
type BackDirective struct {
	Base
}

// ForwardDirective navigates one history entry forward.
type ForwardDirective struct {
	Base
}

func (*Element) viewNode()     {}
func (*Component) viewNode()   {}
func (*SlotElement) viewNode() {}
func (*Text) viewNode()        {}

func (*IfDirective) viewNode()        {}
func (*EachDirective) viewNode()      {}
func (*EventDirective) viewNode()     {}
func (*ModelDirective) viewNode()     {}
func (*A11yDirective) viewNode()      {}
func (*LiveDirective) viewNode()      {}
func (*FocusTrapDirective) viewNode() {}
func (*SrOnlyDirective) viewNode()    {}
func (*ClientDirective) viewNode()    {}
func (*ServerDirective) viewNode()    {}
func (*LinkDirective) viewNode()      {}
func (*OutletDirective) viewNode()    {}
func (*NavigateDirective) viewNode()  {}
func (*BackDirective) viewNode()      {}
func (*ForwardDirective) viewNode()   {}

func (*IfDirective) directiveNode()        {}
func (*EachDirective) directiveNode()      {}
func (*EventDirective) directiveNode()     {}
func (*ModelDirective) directiveNode()     {}
func (*A11yDirective) directiveNode()      {}
func (*LiveDirective) directiveNode()      {}
func (*FocusTrapDirective) directiveNode() {}
func (*SrOnlyDirective) directiveNode()    {}
func (*ClientDirective) directiveNode()    {}
func (*ServerDirective) directiveNode()    {}
func (*LinkDirective) directiveNode()      {}
func (*OutletDirective) directiveNode()    {}
func (*NavigateDirective) directiveNode()  {}
func (*BackDirective) directiveNode()      {}
func (*ForwardDirective) directiveNode()   {}

// ---------------------------------------------------------------------------
// Style nodes

// StyleNode is implemented by style tree nodes.
type StyleNode interface {
	Node
	styleNode()
}

// StyleBlock is the parsed style block. Raw always holds the original text
// so the output can fall back to literal CSS. When Lang is non-empty the
// text matched a third-party preprocessor syntax and Rules is nil; actual
// compilation is delegated to an external collaborator.
type StyleBlock struct {
	Base
	Raw   string
	Lang  string // "", "scss", "less" or "stylus"
	Rules []StyleNode
}

// Declaration is a `property: value` pair.
type Declaration struct {
	Base
	Property  string
	Value     string
	Important bool
}

// Rule is a selector with declarations and nested rules (& parent
// references, descendant nesting).
type Rule struct {
	Base
	Selector     string
	Declarations []*Declaration
	Rules        []StyleNode
}

// AtRule is `@media`, `@keyframes` and friends. Body is nil for
// declaration-less at-rules like `@import`.
type AtRule struct {
	Base
	Name   string
	Params string
	Body   []StyleNode
}

func (*Rule) styleNode()   {}
func (*AtRule) styleNode() {}
