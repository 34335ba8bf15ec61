package aurora

const queryGames = `SELECT GameID, GameName FROM FCT_Game ORDER BY GameID`

const queryRaces = `SELECT RaceID, RaceName FROM FCT_Race WHERE GameID = ? ORDER BY RaceID`

const queryRaceName = `SELECT RaceName FROM FCT_Race WHERE RaceID = ? AND GameID = ?`

// querySurveyed names every system the race knows. Args: race, game, game, race.
const querySurveyed = `
	SELECT DISTINCT s.SystemID, rs.Name
	FROM FCT_System s
	LEFT JOIN FCT_RaceSysSurvey rs
		ON s.SystemID = rs.SystemID AND s.GameID = rs.GameID AND rs.RaceID = ? AND rs.GameID = ?
	WHERE s.GameID = ? AND rs.RaceID = ?`

// queryLinks returns one row per jump point whose far side leads into
// another surveyed system. Args: race, game, game, race, game.
const queryLinks = `
	WITH SystemNames AS (` + querySurveyed + `
	)
	SELECT sn1.SystemID, sn1.Name, sn2.SystemID, sn2.Name, COALESCE(jp1.JumpGateRaceID, 0)
	FROM FCT_JumpPoint jp1
	JOIN SystemNames sn1 ON jp1.SystemID = sn1.SystemID
	JOIN FCT_JumpPoint jp2 ON jp2.WarpPointID = jp1.WPLink AND jp2.GameID = jp1.GameID
	JOIN SystemNames sn2 ON jp2.SystemID = sn2.SystemID
	WHERE jp1.GameID = ? AND jp1.WPLink > 0
	ORDER BY sn1.Name, sn1.SystemID, jp1.WarpPointID`

// queryPopulationSummary. Args: race, game.
const queryPopulationSummary = `
	SELECT COUNT(CASE WHEN p.Population > 0 THEN 1 END), COALESCE(SUM(p.Population), 0)
	FROM FCT_Population p
	WHERE p.RaceID = ? AND p.GameID = ?`

// queryColonies lists populated bodies of any race in systems the viewing
// race has surveyed. Args: race, game.
const queryColonies = `
	SELECT p.PopulationID, p.PopName, p.Population, rss.Name, COALESCE(sb.Name, ''), p.RaceID, r.RaceName
	FROM FCT_Population p
	JOIN FCT_RaceSysSurvey rss ON p.SystemID = rss.SystemID AND p.GameID = rss.GameID
	LEFT JOIN FCT_SystemBody sb ON p.SystemBodyID = sb.SystemBodyID AND p.GameID = sb.GameID
	JOIN FCT_Race r ON p.RaceID = r.RaceID AND p.GameID = r.GameID
	WHERE rss.RaceID = ? AND rss.GameID = ? AND p.Population > 0
	ORDER BY p.Population DESC, p.PopulationID`

// queryDistribution aggregates the race's own colonies per system. Colony
// names are joined with the unit separator. Args: race, game.
const queryDistribution = `
	SELECT rss.Name, COUNT(*), SUM(p.Population), GROUP_CONCAT(p.PopName, char(31))
	FROM FCT_Population p
	JOIN FCT_RaceSysSurvey rss ON p.SystemID = rss.SystemID AND p.GameID = rss.GameID AND p.RaceID = rss.RaceID
	WHERE p.RaceID = ? AND p.GameID = ? AND p.Population > 0
	GROUP BY rss.SystemID, rss.Name
	ORDER BY SUM(p.Population) DESC, rss.Name`

const colonySeparator = "\x1f"

// queryCapital. Args: game, race.
const queryCapital = `SELECT SystemID FROM FCT_Population WHERE GameID = ? AND RaceID = ? AND Capital = 1 LIMIT 1`
