package lexicon

// DomainWords is the known-correct vocabulary used by spell correction.
// Order matters: ties on edit distance resolve to the earlier word.
var DomainWords = []string{
	// content kinds
	"berita",
	"artikel",
	"layanan",
	"pengumuman",
	"agenda",
	"galeri",
	"dokumen",

	// portal nouns
	"pemerintah",
	"pemerintahan",
	"kota",
	"walikota",
	"dinas",
	"kecamatan",
	"kelurahan",
	"penduduk",
	"kependudukan",
	"kesehatan",
	"pendidikan",
	"pariwisata",
	"wisata",
	"budaya",
	"ekonomi",
	"pajak",
	"retribusi",
	"perizinan",
	"izin",
	"administrasi",
	"informasi",
	"transportasi",
	"lingkungan",
	"sosial",
	"keuangan",
	"pembangunan",
	"infrastruktur",
	"sejarah",
	"profil",
	"kontak",
	"visi",
	"misi",
	"pengaduan",
	"bantuan",
	"kegiatan",
	"program",
	"anggaran",
	"peraturan",
}

// Synonyms maps a canonical term to its equivalents. Reverse lookups are
// served by the index built in the synonym package.
var Synonyms = map[string][]string{
	"berita":       {"kabar", "warta", "informasi"},
	"artikel":      {"tulisan", "opini", "publikasi"},
	"layanan":      {"pelayanan", "servis", "jasa"},
	"pengumuman":   {"maklumat", "pemberitahuan"},
	"agenda":       {"jadwal", "kegiatan", "acara"},
	"pemerintah":   {"pemkot", "pemda"},
	"kesehatan":    {"puskesmas", "rsud", "medis"},
	"pendidikan":   {"sekolah", "pelajar"},
	"pariwisata":   {"wisata", "rekreasi", "destinasi"},
	"perizinan":    {"izin", "lisensi"},
	"pajak":        {"retribusi", "pbb"},
	"pengaduan":    {"keluhan", "aduan", "laporan"},
	"kependudukan": {"ktp", "kk", "akta", "dukcapil"},
	"bantuan":      {"bansos", "subsidi"},
	"lingkungan":   {"kebersihan", "sampah"},
	"peraturan":    {"perda", "regulasi", "perwali"},
}
