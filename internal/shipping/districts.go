package shipping

import "strings"

// RestOfCountry is the district label of the fallback rule.
const RestOfCountry = "Rest of Bangladesh"

// Districts lists the 64 districts of Bangladesh.
var Districts = []string{
	"Bagerhat", "Bandarban", "Barguna", "Barishal", "Bhola", "Bogura", "Brahmanbaria", "Chandpur",
	"Chapai Nawabganj", "Chattogram", "Chuadanga", "Cox's Bazar", "Cumilla", "Dhaka", "Dinajpur", "Faridpur",
	"Feni", "Gaibandha", "Gazipur", "Gopalganj", "Habiganj", "Jamalpur", "Jashore", "Jhalokati",
	"Jhenaidah", "Joypurhat", "Khagrachhari", "Khulna", "Kishoreganj", "Kurigram", "Kushtia", "Lakshmipur",
	"Lalmonirhat", "Madaripur", "Magura", "Manikganj", "Meherpur", "Moulvibazar", "Munshiganj", "Mymensingh",
	"Naogaon", "Narail", "Narayanganj", "Narsingdi", "Natore", "Netrokona", "Nilphamari", "Noakhali",
	"Pabna", "Panchagarh", "Patuakhali", "Pirojpur", "Rajbari", "Rajshahi", "Rangamati", "Rangpur",
	"Satkhira", "Shariatpur", "Sherpur", "Sirajganj", "Sunamganj", "Sylhet", "Tangail", "Thakurgaon",
}

// canonicalDistrict returns the listed spelling of name, ignoring case.
func canonicalDistrict(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, RestOfCountry) {
		return RestOfCountry, true
	}
	for _, d := range Districts {
		if strings.EqualFold(name, d) {
			return d, true
		}
	}
	return "", false
}
