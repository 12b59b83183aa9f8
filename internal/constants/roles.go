package constants

// WeaponPair is a primary/secondary weapon loadout.
type WeaponPair struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

func (p WeaponPair) String() string { return p.Primary + "/" + p.Secondary }

// WeaponLeadRoles maps a Discord role id to the loadout its holders may review.
var WeaponLeadRoles = map[string]WeaponPair{
	"1323121646336479253": {Primary: "SNS", Secondary: "GS"},
	"1323121710861516901": {Primary: "SNS", Secondary: "Wand"},
	"1323121684147994756": {Primary: "SNS", Secondary: "Dagger"},
	"1324201709886509107": {Primary: "SNS", Secondary: "Spear"},
	"1323122250995597442": {Primary: "Wand", Secondary: "Bow"},
	"1323122341995348078": {Primary: "Wand", Secondary: "Staff"},
	"1323122486396715101": {Primary: "Wand", Secondary: "SNS"},
	"1323122572174299160": {Primary: "Wand", Secondary: "Dagger"},
	"1323122828802920479": {Primary: "Staff", Secondary: "Bow"},
	"1323122917466181672": {Primary: "Staff", Secondary: "Dagger"},
	"1323122947040219166": {Primary: "Bow", Secondary: "Dagger"},
	"1323123053793640560": {Primary: "GS", Secondary: "Dagger"},
	"1323123139500048384": {Primary: "Spear", Secondary: "Dagger"},
	"1324201778190880799": {Primary: "Spear", Secondary: "Other"},
	"1323123176405729393": {Primary: "Dagger", Secondary: "Wand"},
	"1323123243959451671": {Primary: "Xbow", Secondary: "Dagger"},
}

// MasterRoles may edit every loadout and the static groups.
var MasterRoles = []string{"1309271313398894643", "1309284427553312769"}

// LeadershipRoles is the smaller set allowed to publish statics to Discord.
var LeadershipRoles = []string{"1309271313398894643"}

// AccessLevel is a display label only. Authorization never reads it.
type AccessLevel string

const (
	AccessNone       AccessLevel = "none"
	AccessWeaponLead AccessLevel = "weaponLead"
	AccessMaster     AccessLevel = "master"
	AccessLeadership AccessLevel = "leadership"
)

func (a AccessLevel) String() string { return string(a) }

// MemberClass is the optional combat role of a member.
type MemberClass string

const (
	ClassTank   MemberClass = "Tank"
	ClassRanged MemberClass = "Ranged"
	ClassHealer MemberClass = "Healer"
	ClassBomber MemberClass = "Bomber"
	ClassMelee  MemberClass = "Melee"
)

// Valid reports whether c is one of the known classes. The empty class is
// valid and means the member has none.
func (c MemberClass) Valid() bool {
	switch c {
	case "", ClassTank, ClassRanged, ClassHealer, ClassBomber, ClassMelee:
		return true
	}
	return false
}
